package main

import (
	"github.com/biosecret/tasktracker/app"
	_ "github.com/biosecret/tasktracker/docs"
)

// @title						Task Tracker API
// @version					1.0
// @description				Multi-user task tracking with JWT authentication.
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	// khởi tạo và chạy app
	err := app.SetupAndRunApp()
	if err != nil {
		panic(err)
	}
}
