package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		orders, err := app.FindCollectionByNameOrId("orders")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("exchange_codes")

		collection.Fields.Add(
			&core.TextField{Name: "code", Required: true, Max: 50},
			&core.TextField{Name: "performer_name", Max: 100},
			&core.BoolField{Name: "is_used"},
			&core.DateField{Name: "used_at"},
			&core.RelationField{
				Name:         "order_id",
				CollectionId: orders.Id,
				MaxSelect:    1,
			},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_exchange_codes_code", true, "code", "")
		collection.AddIndex("idx_exchange_codes_performer", false, "performer_name", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("exchange_codes")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
