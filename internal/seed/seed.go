// Package seed generates a small demo dataset: a few clinicians, a roster
// of patients, a day of appointments and some inventory. Invoices and the
// audit log start empty.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/klinik-dev/klinik-store/internal/store"
)

var doctors = []string{"Dr. Elif", "Dr. Kerem", "Dr. Aylin"}

var apptStatuses = []string{"confirmed", "pending", "arrived", "cancelled"}

// Dataset builds demo rows for every collection in the closed set.
func Dataset() map[string][]store.Record {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	created := time.Now().UTC().Format(time.RFC3339)

	users := make([]store.Record, 0, len(doctors))
	for _, name := range doctors {
		users = append(users, store.Record{
			"id":   store.NewID("use"),
			"name": name,
			"role": "clinician",
		})
	}

	patients := make([]store.Record, 0, 25)
	for i := 0; i < 25; i++ {
		patients = append(patients, store.Record{
			"id":        store.NewID("pat"),
			"name":      fmt.Sprintf("Patient %d", i+1),
			"phone":     fmt.Sprintf("+90 5%09d", 100000000+rng.Intn(899999999)),
			"birth":     1980 + rng.Intn(30),
			"notes":     "",
			"createdAt": created,
			"teeth":     map[string]any{},
		})
	}

	appts := make([]store.Record, 0, 20)
	for i := 0; i < 20; i++ {
		start := time.Now().UTC().Truncate(time.Hour).
			Add(time.Duration(9+rng.Intn(8)) * time.Hour).
			Add(time.Duration(15*rng.Intn(4)) * time.Minute)
		appts = append(appts, store.Record{
			"id":        store.NewID("app"),
			"patientId": patients[rng.Intn(len(patients))].ID(),
			"doctor":    doctors[rng.Intn(len(doctors))],
			"start":     start.Format(time.RFC3339),
			"duration":  30,
			"status":    apptStatuses[rng.Intn(len(apptStatuses))],
			"createdAt": created,
			"price":     300 + rng.Intn(1500),
		})
	}

	inventory := []store.Record{
		{"id": store.NewID("inv"), "name": "Implant screw", "stock": 12, "unit": "piece"},
		{"id": store.NewID("inv"), "name": "Anesthetic", "stock": 34, "unit": "vial"},
		{"id": store.NewID("inv"), "name": "Composite", "stock": 20, "unit": "syringe"},
	}

	return map[string][]store.Record{
		"users":     users,
		"patients":  patients,
		"appts":     appts,
		"inventory": inventory,
		"invoices":  {},
		"audit":     {},
	}
}

// Apply writes the demo dataset straight into the backing documents,
// replacing whatever is there. It bypasses the store on purpose: seeding
// is a reset, not a mutation worth auditing.
func Apply(files *store.FileStore) error {
	for col, rows := range Dataset() {
		if err := files.Save(col, rows); err != nil {
			return err
		}
	}
	return nil
}
