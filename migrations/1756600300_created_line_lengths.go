package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		queues, err := app.FindCollectionByNameOrId("queues")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("line_lengths")

		collection.Fields.Add(
			&core.RelationField{
				Name:          "queue",
				Required:      true,
				CollectionId:  queues.Id,
				CascadeDelete: true,
				MaxSelect:     1,
			},
			&core.NumberField{Name: "length", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.DateField{Name: "recorded_at", Required: true},
		)

		collection.AddIndex("idx_line_lengths_queue_recorded", false, "queue, recorded_at", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("line_lengths")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
