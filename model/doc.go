// Package model holds per-entity-type cache configuration.
//
// A root type is registered with its own options and driver. Derived types
// are resolved from a parent at registration: they receive a copy of the
// parent's options with their overrides merged on top, and share the
// parent's driver. Changing a parent afterwards is not possible, so derived
// types never observe later edits.
//
//	reg := model.NewRegistry()
//	user, _ := reg.Register(model.Config{Name: "User", Driver: drv})
//
//	ttl := 5 * time.Minute
//	admin, _ := reg.Derive("User", "Admin", cache.Override{TTL: &ttl})
//
//	repo := admin.Repository(db, nil)
//	row, found, err := repo.FindByID(ctx, 1)
package model
