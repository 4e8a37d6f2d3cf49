package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fulldump/goconfig"

	"github.com/fulldump/labgrid/bootstrap"
	"github.com/fulldump/labgrid/configuration"
	"github.com/fulldump/labgrid/logger"
)

var banner = `
 _       _               _     _ 
| | __ _| |__   __ _ _ __(_) __| |
| |/ _' | '_ \ / _' | '__| |/ _' |
| | (_| | |_) | (_| | |  | | (_| |
|_|\__,_|_.__/ \__, |_|  |_|\__,_|
               |___/  version ` + bootstrap.VERSION + `
`

func main() {

	c := configuration.Default()
	goconfig.Read(&c)

	if c.Version {
		fmt.Println("Version:", bootstrap.VERSION)
		return
	}

	if c.ShowBanner {
		fmt.Println(banner)
	}

	if c.ShowConfig {
		e := json.NewEncoder(os.Stdout)
		e.SetIndent("", "    ")
		e.Encode(c)
	}

	start, _, err := bootstrap.Bootstrap(&c)
	if err != nil {
		logger.Get().Error("bootstrap", "err", err)
		os.Exit(-1)
	}

	start()
}
