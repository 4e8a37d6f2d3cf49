package main

import (
	"log"
	"strings"

	"github.com/fulldump/goconfig"
)

type Config struct {
	Test    string `usage:"name of the test: ALL | REGISTER | SEARCH"`
	Base    string `usage:"base URL, empty starts an embedded server"`
	N       int64  `usage:"number of samples"`
	Batch   int    `usage:"samples per register request"`
	Workers int    `usage:"number of workers"`
}

var cleanups []func()

func main() {

	defer func() {
		log.Println("Cleaning up...")
		for _, cleanup := range cleanups {
			cleanup()
		}
	}()

	c := Config{
		Test:    "all",
		N:       100_000,
		Batch:   500,
		Workers: 8,
	}
	goconfig.Read(&c)

	switch strings.ToUpper(c.Test) {
	case "ALL":
		TestRegister(c)
		TestSearch(c)
	case "REGISTER":
		TestRegister(c)
	case "SEARCH":
		TestSearch(c)
	default:
		log.Fatalf("Unknown test %s", c.Test)
	}

}
