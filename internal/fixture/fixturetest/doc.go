// Package fixturetest wires database fixtures into Go tests.
//
//	func TestMain(m *testing.M) { ... }
//
//	func TestInventory(t *testing.T) {
//	    cfg := internal.DefaultConfig()
//	    cfg.DataDir = "testdata"
//	    cfg.DataFiles = []string{"schema.sql"}
//
//	    db := fixturetest.New(t, cfg).DB()
//
//	    t.Run("inserts", func(t *testing.T) {
//	        tx := fixturetest.Tx(t, db)
//	        ...
//	    })
//	}
package fixturetest
