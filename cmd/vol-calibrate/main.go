package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/contactkeval/vol-calibrate/internal/calibrate"
	"github.com/contactkeval/vol-calibrate/internal/data"
	"github.com/contactkeval/vol-calibrate/internal/report"
)

func main() {
	configPath := flag.String("config", filepath.Join("configs", "smile.json"), "path to JSON config")
	rest := flag.Bool("rest", false, "run as REST server (accept calibration jobs)")
	port := flag.String("port", ":8080", "REST server listen address")
	flag.Parse()

	cfgData, err := os.ReadFile(*configPath)
	if err != nil {
		log.Fatalf("reading config: %v", err)
	}

	var cfg calibrate.Config
	if err := json.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// choose provider
	var prov data.Provider
	apiKey := os.Getenv("CHAIN_API_KEY")
	if apiKey != "" {
		prov = data.NewChainAPIProvider(apiKey)
		log.Printf("[info] chain API provider enabled")
	} else {
		prov = data.NewSyntheticProvider(cfg.Seed)
		log.Printf("[info] synthetic provider enabled")
	}

	engine := calibrate.NewEngine(&cfg, prov)

	if *rest {
		mux := http.NewServeMux()
		mux.HandleFunc("/run", func(w http.ResponseWriter, r *http.Request) {
			// quick endpoint to run a calibration once with the loaded config
			jobID := uuid.NewString()
			log.Printf("[info] received /run request, job %s", jobID)
			res, err := engine.Run()
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"job_id": jobID,
				"result": res,
			})
		})
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
		log.Printf("[info] starting REST server on %s", *port)
		log.Fatal(http.ListenAndServe(*port, mux))
		return
	}

	start := time.Now()
	res, err := engine.Run()
	if err != nil {
		log.Fatalf("calibration failed: %v", err)
	}
	// write outputs to cfg.ReportDir
	if err := os.MkdirAll(cfg.ReportDir, 0755); err != nil {
		log.Printf("[warn] could not create output dir %s: %v", cfg.ReportDir, err)
	}
	_ = report.WriteJSON(res, cfg.ReportDir)
	_ = report.WriteCSV(res, cfg.ReportDir)
	log.Printf("[done] finished in %v, wrote %d strikes to %s", time.Since(start), len(res.Points), cfg.ReportDir)
}
