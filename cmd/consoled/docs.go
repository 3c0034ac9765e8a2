package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           consoled API
// @version         1.0
// @description     HTTP API for the AI workstation demo console: model session
// @description     control, guided challenges, assets and preferences.
//
// @contact.name   consoled maintainers
// @contact.url    https://github.com/your-org/consoled
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
