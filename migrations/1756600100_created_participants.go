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

		collection := core.NewBaseCollection("participants")

		collection.Fields.Add(
			&core.TextField{Name: "code", Required: true, Max: 16},
			&core.TextField{Name: "number", Required: true, Max: 4},
			&core.TextField{Name: "name", Required: true, Max: 120},
			&core.TextField{Name: "phone", Max: 32},
			&core.SelectField{
				Name:      "state",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"waiting", "serving", "completed", "cancelled", "no_show"},
			},
			&core.NumberField{Name: "position", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.RelationField{
				Name:          "queue",
				Required:      true,
				CollectionId:  queues.Id,
				CascadeDelete: true,
				MaxSelect:     1,
			},
			&core.TextField{Name: "resource", Max: 32},
			&core.DateField{Name: "joined_at", Required: true},
			&core.DateField{Name: "service_started_at"},
			&core.DateField{Name: "service_completed_at"},
			&core.NumberField{Name: "waited_minutes", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "party_size", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.TextField{Name: "medical_field", Max: 64},
			&core.NumberField{Name: "priority", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.TextField{Name: "service_type", Max: 64},
			&core.TextField{Name: "table_served", Max: 120},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_participants_code", true, "code", "")
		collection.AddIndex("idx_participants_queue_number", true, "queue, number", "")
		collection.AddIndex("idx_participants_queue_state", false, "queue, state", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("participants")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
