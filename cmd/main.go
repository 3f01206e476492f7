package main

import "github.com/taskman-dev/taskman/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustConnectPostgres()
	defer app.DisconnectPostgres()

	app.MustMigratePostgres()

	app.MustListenAndServeHTTP()
}
