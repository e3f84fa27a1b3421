// Package config loads YAML configuration files and environment overrides
// into typed structs.
//
// Files are read with Viper, a .env file is loaded with godotenv, and any
// environment variable carrying the application prefix overrides the file.
// A double underscore separates nesting levels:
//
//	RESTCLIENT_CLIENT__BASE_URL=https://api.example.com
//
// sets client.base_url.
package config
