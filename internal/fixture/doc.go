// Package fixture brings up a disposable PostgreSQL container loaded with
// test data and tears it down again.
//
// Start renders the Dockerfile, streams it and the data files to the Docker
// daemon as a build context, runs the resulting image with its database port
// published to a random host port, and waits for the database to accept
// connections. If any step fails, everything acquired so far is removed
// before Start returns.
//
//	f, err := fixture.Start(ctx, client, cfg, w)
//	if err != nil {
//	    return err
//	}
//	defer f.Close(ctx)
//
//	rows, err := f.DB().QueryContext(ctx, "SELECT ...")
package fixture
