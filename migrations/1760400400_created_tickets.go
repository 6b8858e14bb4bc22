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

		collection := core.NewBaseCollection("tickets")

		collection.Fields.Add(
			&core.RelationField{
				Name:          "order_id",
				CollectionId:  orders.Id,
				Required:      true,
				MaxSelect:     1,
				CascadeDelete: true,
			},
			&core.TextField{Name: "ticket_code", Required: true, Max: 36},
			&core.SelectField{
				Name:      "ticket_type",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"GENERAL", "RESERVED"},
			},
			&core.BoolField{Name: "is_exchanged"},
			&core.BoolField{Name: "is_used"},
			&core.DateField{Name: "used_at"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_tickets_ticket_code", true, "ticket_code", "")
		collection.AddIndex("idx_tickets_order_id", false, "order_id", "")
		collection.AddIndex("idx_tickets_ticket_type", false, "ticket_type", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
