package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("queues")

		collection.Fields.Add(
			&core.TextField{Name: "code", Required: true, Max: 16},
			&core.TextField{Name: "name", Required: true, Max: 120},
			&core.SelectField{
				Name:      "category",
				Required:  true,
				MaxSelect: 1,
				Values:    []string{"general", "restaurant", "hospital", "bank"},
			},
			&core.NumberField{Name: "capacity", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.TextField{Name: "open_time", Max: 5},
			&core.TextField{Name: "close_time", Max: 5},
			&core.BoolField{Name: "closed"},
			&core.NumberField{Name: "estimated_wait_minutes", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "average_serve_minutes", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "completed_participants", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.TextField{Name: "last_number", Max: 4},
			&core.NumberField{Name: "latitude"},
			&core.NumberField{Name: "longitude"},
			&core.TextField{Name: "creator", Max: 64},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_queues_code", true, "code", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("queues")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
