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

		collection := core.NewBaseCollection("resources")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true, Max: 120},
			&core.SelectField{
				Name:      "kind",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"table", "doctor", "counter"},
			},
			&core.NumberField{Name: "capacity", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.TextField{Name: "specialty", Max: 64},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"available", "busy", "unavailable"},
			},
			&core.RelationField{
				Name:          "queue",
				Required:      true,
				CollectionId:  queues.Id,
				CascadeDelete: true,
				MaxSelect:     1,
			},
			&core.TextField{Name: "assigned_to", Max: 32},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_resources_queue_name", true, "queue, name", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("resources")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
