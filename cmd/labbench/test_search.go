package main

import (
	"log"
	"slices"
	"sync"
	"time"
)

var searchTerms = []string{"treated", "liver", "S-1", "homo", "rna", ""}

// TestSearch opens one experiment view per worker and measures search and
// paging latency over the samples tab.
func TestSearch(c Config) {

	defer WithServer(&c)()

	experimentId := CreateExperiment(c.Base)

	batch := []JSON{}
	for n := int64(0); n < c.N; n++ {
		batch = append(batch, fakeSample(n))
		if len(batch) == c.Batch || n == c.N-1 {
			err := Do("POST", c.Base+"/v1/experiments/"+experimentId+"/samples", batch, nil)
			if err != nil {
				log.Fatalln("ERROR:", err)
			}
			batch = []JSON{}
		}
	}

	mutex := &sync.Mutex{}
	latencies := []time.Duration{}

	Parallel(c.Workers, func() {
		view := JSON{}
		err := Do("POST", c.Base+"/v1/experiments/"+experimentId+":openView", JSON{}, &view)
		if err != nil {
			log.Fatalln("ERROR:", err)
		}
		viewPath := c.Base + "/v1/views/" + view["id"].(string)
		defer Do("POST", viewPath+":close", nil, nil)

		for _, term := range searchTerms {
			t0 := time.Now()
			err := Do("POST", viewPath+"/tabs/Samples:search", JSON{"text": term}, nil)
			if err == nil {
				err = Do("POST", viewPath+"/tabs/Samples:page", JSON{"offset": 0, "limit": 150}, nil)
			}
			if err != nil {
				log.Fatalln("ERROR:", err)
			}
			took := time.Since(t0)

			mutex.Lock()
			latencies = append(latencies, took)
			mutex.Unlock()
		}
	})

	slices.Sort(latencies)
	log.Println("searches:", len(latencies))
	log.Println("p50:", latencies[len(latencies)/2])
	log.Println("p99:", latencies[len(latencies)*99/100])
	log.Println("max:", latencies[len(latencies)-1])
}
