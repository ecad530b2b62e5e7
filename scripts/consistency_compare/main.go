// Command consistency_compare replays read-only registry requests against two
// gateways, one started with REGISTRY_LEGACY_MODE=true and one without, and
// reports where their answers diverge after the same sequence of writes.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type target struct {
	Method   string `yaml:"method"`
	Path     string `yaml:"path"`
	Critical bool   `yaml:"critical"`
}

type targetFile struct {
	Targets []target `yaml:"targets"`
}

type comparison struct {
	Target          target
	LegacyStatus    int
	CorrectedStatus int
	StatusMatch     bool
	BodyMatch       bool
	Error           error
	DurationLegacy  time.Duration
	DurationCorrect time.Duration
}

// volatileKeys differ between any two gateways and are dropped before bodies are compared.
var volatileKeys = map[string]struct{}{
	"meta":      {},
	"timestamp": {},
}

func main() {
	var (
		correctedBase string
		legacyBase    string
		targetsPath   string
		timeout       time.Duration
	)

	flag.StringVar(&correctedBase, "corrected-base", "http://localhost:8080", "gateway running with cross-index consistency")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8081", "gateway running with REGISTRY_LEGACY_MODE=true")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "consistency_compare", "targets.yaml"), "path to YAML targets file")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	log, _ := zap.NewDevelopment()
	defer func() { _ = log.Sync() }()

	targets, err := loadTargets(targetsPath)
	if err != nil {
		log.Fatal("failed to load targets", zap.String("path", targetsPath), zap.Error(err))
	}

	client := &http.Client{Timeout: timeout}
	var (
		comparisons  []comparison
		breaking     int
		optionalDiff int
	)

	for _, t := range targets {
		comp := compareTarget(client, correctedBase, legacyBase, t)
		switch {
		case comp.Error != nil:
			log.Warn("request failed", zap.String("path", t.Path), zap.Error(comp.Error))
			if t.Critical {
				breaking++
			}
		case !comp.StatusMatch || !comp.BodyMatch:
			if t.Critical {
				breaking++
			} else {
				optionalDiff++
			}
		}
		comparisons = append(comparisons, comp)
	}

	printReport(os.Stdout, comparisons)

	log.Info("comparison finished", zap.Int("breaking", breaking), zap.Int("optional", optionalDiff))
	if breaking > 0 {
		_ = log.Sync()
		os.Exit(1)
	}
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseTargets(data)
}

func parseTargets(data []byte) ([]target, error) {
	var file targetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, errors.New("no targets defined")
	}
	return file.Targets, nil
}

func compareTarget(client *http.Client, correctedBase, legacyBase string, tgt target) comparison {
	comp := comparison{Target: tgt}
	correctedBody, correctedStatus, correctedDur, err := fetch(client, correctedBase, tgt)
	if err != nil {
		comp.Error = fmt.Errorf("corrected request failed: %w", err)
		return comp
	}
	legacyBody, legacyStatus, legacyDur, err := fetch(client, legacyBase, tgt)
	if err != nil {
		comp.Error = fmt.Errorf("legacy request failed: %w", err)
		return comp
	}

	comp.CorrectedStatus = correctedStatus
	comp.LegacyStatus = legacyStatus
	comp.DurationCorrect = correctedDur
	comp.DurationLegacy = legacyDur
	comp.StatusMatch = correctedStatus == legacyStatus
	comp.BodyMatch = bodiesEqual(correctedBody, legacyBody)
	return comp
}

func fetch(client *http.Client, base string, tgt target) ([]byte, int, time.Duration, error) {
	if client == nil {
		return nil, 0, 0, errors.New("nil client")
	}
	method := strings.ToUpper(strings.TrimSpace(tgt.Method))
	if method == "" {
		method = http.MethodGet
	}
	path := tgt.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read body: %w", err)
	}
	return body, resp.StatusCode, time.Since(start), nil
}

func bodiesEqual(a, b []byte) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}

	var aj, bj interface{}
	if err := json.Unmarshal(a, &aj); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bj); err != nil {
		return false
	}
	normalize(&aj)
	normalize(&bj)
	return reflect.DeepEqual(aj, bj)
}

func normalize(v *interface{}) {
	switch val := (*v).(type) {
	case map[string]interface{}:
		for k, v2 := range val {
			if _, skip := volatileKeys[k]; skip {
				delete(val, k)
				continue
			}
			normalize(&v2)
			val[k] = v2
		}
	case []interface{}:
		for i, v2 := range val {
			normalize(&v2)
			val[i] = v2
		}
	case float64:
		if val == float64(int64(val)) {
			*v = int64(val)
		}
	}
}

func printReport(w io.Writer, results []comparison) {
	fmt.Fprintln(w, "Consistency Compare Report")
	fmt.Fprintln(w, "==========================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if !res.StatusMatch || !res.BodyMatch {
			status = "DIFF"
		}
		fmt.Fprintf(w, "[%s] %s %s\n", status, res.Target.Method, res.Target.Path)
		fmt.Fprintf(w, "  Corrected: %d (%s)\n", res.CorrectedStatus, res.DurationCorrect)
		fmt.Fprintf(w, "  Legacy:    %d (%s)\n", res.LegacyStatus, res.DurationLegacy)
		if res.Error != nil {
			fmt.Fprintf(w, "  Error: %v\n", res.Error)
		} else {
			fmt.Fprintf(w, "  Status match: %t | Body match: %t | Critical: %t\n", res.StatusMatch, res.BodyMatch, res.Target.Critical)
		}
	}
}
