package config

import (
	"log"
	"os"
)

type Config struct {
	ListenAddr string
	WebURL     string
	APIURL     string
	JWTSecret  []byte
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(v string, name string) string {
	if v == "" {
		log.Fatalf("missing required env %s", name)
	}
	return v
}

func Load() *Config {
	return &Config{
		ListenAddr: getenv("GATEWAY_ADDR", ":8081"),
		WebURL:     must(os.Getenv("WEB_URL"), "WEB_URL"),
		APIURL:     must(os.Getenv("API_URL"), "API_URL"),
		// Same secret as the API: both layers must verify one claim shape.
		JWTSecret: []byte(must(os.Getenv("JWT_SECRET"), "JWT_SECRET")),
	}
}
