package main

import "github.com/timeboxhq/timebox/internal/app"

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	app.MustConnectPostgres()
	defer app.DisconnectPostgres()

	app.MustInitServices()

	app.MustStartSweeper()
	defer app.StopSweeper()

	app.MustListenAndServeHTTP()
}
