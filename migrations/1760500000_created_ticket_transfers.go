package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("ticket_transfers")

		// submissions arrive through the form sink only
		collection.ListRule = nil
		collection.ViewRule = nil
		collection.CreateRule = nil
		collection.UpdateRule = nil
		collection.DeleteRule = nil

		collection.Fields.Add(
			&core.TextField{Name: "ticket_id", Max: 64},
			&core.TextField{Name: "new_name", Required: true, Max: 200},
			&core.EmailField{Name: "new_email", Required: true},
			&core.TextField{Name: "new_phone", Required: true, Max: 32},
			&core.TextField{Name: "reason", Max: 2000},
			&core.TextField{Name: "country_code", Max: 8},
			&core.TextField{Name: "previous_owner", Max: 200},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_ticket_transfers_ticket_created", false, "ticket_id, created", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("ticket_transfers")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
