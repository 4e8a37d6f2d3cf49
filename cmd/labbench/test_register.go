package main

import (
	"log"
	"sync/atomic"
	"time"
)

func TestRegister(c Config) {

	defer WithServer(&c)()

	experimentId := CreateExperiment(c.Base)

	remaining := c.N

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(time.Second):
				log.Println("remaining:", atomic.LoadInt64(&remaining))
			}
		}
	}()

	t0 := time.Now()
	Parallel(c.Workers, func() {
		for {
			batch := []JSON{}
			for len(batch) < c.Batch {
				n := atomic.AddInt64(&remaining, -1)
				if n < 0 {
					break
				}
				batch = append(batch, fakeSample(n))
			}
			if len(batch) == 0 {
				return
			}

			err := Do("POST", c.Base+"/v1/experiments/"+experimentId+"/samples", batch, nil)
			if err != nil {
				log.Fatalln("ERROR:", err)
			}
		}
	})

	took := time.Since(t0)
	log.Println("registered:", c.N)
	log.Println("took:", took)
	log.Printf("Throughput: %.2f samples/sec\n", float64(c.N)/took.Seconds())
}
