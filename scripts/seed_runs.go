// seed_runs.go queues synthetic evaluation runs through the ftopsis API.
//
// Usage:
//
//	go run scripts/seed_runs.go -api http://localhost:8700 -n 20 -seed 1
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
	"github.com/MikeSquared-Agency/Ftopsis/internal/input"
	"github.com/MikeSquared-Agency/Ftopsis/internal/sample"
)

type runRequest struct {
	Document json.RawMessage `json:"document"`
	Mode     string          `json:"mode,omitempty"`
	Source   string          `json:"source"`
}

var layouts = []struct {
	kind fuzzy.Kind
	mode input.Mode
}{
	{fuzzy.KindTriangular, input.ModeRank},
	{fuzzy.KindTrapezoidal, input.ModeRank},
	{fuzzy.KindTriangular, input.ModeClassify},
	{fuzzy.KindTrapezoidal, input.ModeClassify},
}

func main() {
	apiURL := flag.String("api", "http://localhost:8700", "ftopsis API base URL")
	clientID := flag.String("client", "seed", "X-Client-ID header value")
	count := flag.Int("n", 12, "number of runs to queue")
	seed := flag.Int64("seed", 0, "first generator seed (0 is random for every run)")
	dryRun := flag.Bool("dry-run", false, "print documents without posting")
	flag.Parse()

	client := &http.Client{}
	created, skipped := 0, 0
	for i := 0; i < *count; i++ {
		layout := layouts[i%len(layouts)]
		opts := sample.DefaultOptions()
		opts.Kind = layout.kind
		opts.Mode = layout.mode
		opts.Elements = 3 + i%6
		if *seed != 0 {
			opts.Seed = *seed + int64(i)
		}

		doc, err := sample.Generate(opts)
		if err != nil {
			log.Fatalf("generate run %d: %v", i+1, err)
		}

		if *dryRun {
			fmt.Printf("[%d] %s %s\n%s\n", i+1, layout.kind, layout.mode, doc)
			continue
		}

		body, _ := json.Marshal(runRequest{Document: doc, Mode: string(layout.mode), Source: "seed"})
		req, err := http.NewRequest("POST", *apiURL+"/api/v1/runs", bytes.NewReader(body))
		if err != nil {
			log.Printf("skip run %d: %v", i+1, err)
			skipped++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip run %d: %v", i+1, err)
			skipped++
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusAccepted {
			created++
		} else {
			log.Printf("skip run %d: status %d", i+1, resp.StatusCode)
			skipped++
		}
	}

	if !*dryRun {
		log.Printf("done: %d queued, %d skipped", created, skipped)
	}
}
