package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("performances")

		collection.Fields.Add(
			&core.TextField{Name: "title", Required: true, Max: 200},
			&core.TextField{Name: "volume", Max: 50},
			&core.TextField{Name: "performance_date", Required: true, Pattern: `^\d{4}-\d{2}-\d{2}$`},
			&core.TextField{Name: "performance_time", Required: true, Max: 5},
			&core.TextField{Name: "doors_open_time", Max: 5},
			&core.TextField{Name: "venue_name", Required: true, Max: 200},
			&core.TextField{Name: "venue_address"},
			&core.TextField{Name: "venue_access"},
			&core.NumberField{Name: "general_price", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "reserved_price", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "general_capacity", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "reserved_capacity", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "general_sold", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "reserved_sold", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.SelectField{
				Name:      "sale_status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"NOT_ON_SALE", "ON_SALE", "SOLD_OUT", "ENDED"},
			},
			&core.DateField{Name: "sale_start_at"},
			&core.DateField{Name: "sale_end_at"},
			&core.TextField{Name: "flyer_image_url"},
			&core.TextField{Name: "description"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_performances_volume", false, "volume", "")
		collection.AddIndex("idx_performances_date", false, "performance_date", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("performances")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
