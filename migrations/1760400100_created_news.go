package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("news")

		collection.Fields.Add(
			&core.TextField{Name: "title", Required: true, Max: 255},
			&core.TextField{Name: "content"},
			&core.DateField{Name: "published_at", Required: true},
			&core.TextField{Name: "category", Max: 100},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_news_published_at", false, "published_at", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("news")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
