package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		performances, err := app.FindCollectionByNameOrId("performances")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("orders")

		collection.Fields.Add(
			&core.TextField{Name: "stripe_session_id", Required: true, Max: 255},
			&core.TextField{Name: "stripe_payment_intent_id", Max: 255},
			&core.RelationField{
				Name:         "performance_id",
				CollectionId: performances.Id,
				MaxSelect:    1,
			},
			&core.TextField{Name: "performance_date", Required: true, Max: 50},
			&core.TextField{Name: "performance_label", Max: 200},
			&core.NumberField{Name: "general_quantity", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "reserved_quantity", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "general_price", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "reserved_price", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "discounted_general_count", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "discount_amount", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.TextField{Name: "exchange_codes", Max: 1000},
			&core.NumberField{Name: "total_amount", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.TextField{Name: "customer_name", Required: true, Max: 200},
			&core.EmailField{Name: "customer_email", Required: true},
			&core.TextField{Name: "customer_phone", Max: 50},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"PENDING", "PAID", "CANCELLED", "REFUNDED"},
			},
			&core.DateField{Name: "paid_at"},
			&core.DateField{Name: "cancelled_at"},
			&core.DateField{Name: "refunded_at"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_orders_stripe_session_id", true, "stripe_session_id", "")
		collection.AddIndex("idx_orders_status", false, "status", "")
		collection.AddIndex("idx_orders_performance_date", false, "performance_date", "")
		collection.AddIndex("idx_orders_customer_email", false, "customer_email", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("orders")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
