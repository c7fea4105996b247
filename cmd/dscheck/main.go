// Command dscheck performs integrity checks over a data directory: the
// registry's published records, the poller's persisted state, and the
// dataset files themselves. It verifies every published file exists, is
// openable, carries usable coordinate axes, and matches the metadata
// recorded for it.
//
// Usage:
//
//	go run ./cmd/dscheck \
//	  -registry data/registry.properties \
//	  -state data/poller.state
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/celtiberi/wind-service-2/internal/adapter/dataset"
	"github.com/celtiberi/wind-service-2/internal/domain"
	"github.com/celtiberi/wind-service-2/internal/registry"
)

// phase tracks pass/fail for one validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func (p *phase) report() {
	if p.passed() {
		fmt.Printf("PASS  %s\n", p.name)
		return
	}
	fmt.Printf("FAIL  %s\n", p.name)
	for _, e := range p.errors {
		fmt.Printf("      %s\n", e)
	}
}

func main() {
	registryPath := flag.String("registry", "", "path to the registry file")
	statePath := flag.String("state", "", "path to the poller state file (optional)")
	flag.Parse()

	if *registryPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*registryPath, *statePath); code != 0 {
		os.Exit(code)
	}
}

func run(registryPath, statePath string) int {
	reg := registry.Open(registryPath)
	records, err := reg.ReadAll()
	if err != nil {
		fmt.Printf("FAIL  read registry: %v\n", err)
		return 1
	}
	if len(records) == 0 {
		fmt.Println("registry has no published datasets")
		return 1
	}

	failed := false
	for _, family := range domain.Families {
		rec, ok := records[family]
		if !ok {
			continue
		}
		p := &phase{name: string(family)}
		checkRecord(p, family, rec)
		p.report()
		if !p.passed() {
			failed = true
		}
	}

	if statePath != "" {
		p := &phase{name: "state file"}
		if _, err := os.Stat(statePath); err != nil {
			p.errorf("poller state not readable: %v", err)
		}
		p.report()
		if !p.passed() {
			failed = true
		}
	}

	if failed {
		return 1
	}
	return 0
}

// checkRecord validates one family's published dataset end to end.
func checkRecord(p *phase, family domain.Family, rec domain.PublishedDataset) {
	if rec.Family != family {
		p.errorf("registry record family mismatch: %s", rec.Family)
	}
	info, err := os.Stat(rec.Path)
	if err != nil {
		p.errorf("published file missing: %v", err)
		return
	}
	if info.Size() == 0 {
		p.errorf("published file is empty: %s", rec.Path)
	}

	md, err := domain.ParseFileMetadata(info.Name(), rec.Metadata.Cycle.Date)
	if err != nil {
		p.errorf("file name not parseable: %v", err)
	} else if md.Cycle != rec.Metadata.Cycle {
		p.errorf("file name cycle %s does not match recorded cycle %s", md.Cycle, rec.Metadata.Cycle)
	}

	r, err := dataset.OpenNetCDF(rec.Path, family)
	if err != nil {
		p.errorf("open dataset: %v", err)
		return
	}
	defer r.Close()

	lats, lons, err := r.Coordinates()
	if err != nil {
		p.errorf("read coordinates: %v", err)
		return
	}
	if len(lats) == 0 || len(lons) == 0 || len(lats[0]) == 0 {
		p.errorf("empty coordinate axes")
		return
	}
	fmt.Printf("      %s: %s, grid %dx%d, downloaded %s\n",
		family, rec.Metadata.Cycle, len(lats), len(lats[0]),
		rec.DownloadTime.Format("2006-01-02 15:04:05 MST"))
}
