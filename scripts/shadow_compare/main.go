// Command shadow_compare replays read-only requests against the Go API and
// the legacy Node service and diffs the responses. Used during the cutover
// to prove route parity before traffic moves.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"text/tabwriter"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type result struct {
	target   target
	goStatus int
	oldSt    int
	match    bool
	err      error
}

// volatileKeys legitimately differ between the two backends: each mints its
// own ids and write timestamps.
var volatileKeys = map[string]struct{}{
	"id":         {},
	"request_id": {},
	"created_at": {},
	"updated_at": {},
}

func main() {
	goBase := flag.String("go-base", "http://localhost:8080", "Go API base URL")
	legacyBase := flag.String("legacy-base", "http://localhost:3000", "Legacy Node app base URL")
	token := flag.String("token", os.Getenv("SHADOW_TOKEN"), "Bearer token valid on both backends")
	targetsPath := flag.String("targets", filepath.Join("scripts", "shadow_compare", "targets.json"), "JSON targets file")
	timeout := flag.Duration("timeout", 5*time.Second, "per-request timeout")
	flag.Parse()

	targets, err := loadTargets(*targetsPath)
	if err != nil {
		log.Fatalf("load targets: %v", err)
	}

	client := &http.Client{}
	ctx := context.Background()

	var results []result
	breaking := 0
	for _, t := range targets {
		res := compare(ctx, client, *goBase, *legacyBase, *token, t, *timeout)
		if t.Critical && (res.err != nil || !res.match) {
			breaking++
		}
		results = append(results, res)
	}

	report(results)
	if breaking > 0 {
		fmt.Printf("\n%d breaking difference(s)\n", breaking)
		os.Exit(1)
	}
	fmt.Println("\nall critical routes match")
}

func loadTargets(path string) ([]target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Targets []target `json:"targets"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if len(file.Targets) == 0 {
		return nil, fmt.Errorf("no targets in %s", path)
	}
	return file.Targets, nil
}

func compare(ctx context.Context, client *http.Client, goBase, legacyBase, token string, t target, timeout time.Duration) result {
	res := result{target: t}

	goStatus, goBody, err := fetch(ctx, client, goBase, token, t, timeout)
	if err != nil {
		res.err = fmt.Errorf("go: %w", err)
		return res
	}
	oldStatus, oldBody, err := fetch(ctx, client, legacyBase, token, t, timeout)
	if err != nil {
		res.err = fmt.Errorf("legacy: %w", err)
		return res
	}

	res.goStatus = goStatus
	res.oldSt = oldStatus
	res.match = goStatus == oldStatus && bodiesEqual(goBody, oldBody)
	return res
}

func fetch(ctx context.Context, client *http.Client, base, token string, t target, timeout time.Duration) (int, []byte, error) {
	method := strings.ToUpper(strings.TrimSpace(t.Method))
	if method == "" {
		method = http.MethodGet
	}
	url := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(t.Path, "/")

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, method, url, nil)
	if err != nil {
		return 0, nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// bodiesEqual compares two JSON bodies structurally after dropping volatile
// fields. Non-JSON bodies fall back to a byte compare.
func bodiesEqual(a, b []byte) bool {
	var av, bv interface{}
	if json.Unmarshal(a, &av) != nil || json.Unmarshal(b, &bv) != nil {
		return strings.TrimSpace(string(a)) == strings.TrimSpace(string(b))
	}
	return reflect.DeepEqual(scrub(av), scrub(bv))
}

func scrub(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, inner := range val {
			if _, volatile := volatileKeys[k]; volatile {
				delete(val, k)
				continue
			}
			val[k] = scrub(inner)
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = scrub(inner)
		}
		return val
	default:
		return val
	}
}

func report(results []result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATE\tMETHOD\tPATH\tGO\tLEGACY\tCRITICAL")
	for _, res := range results {
		state := "ok"
		switch {
		case res.err != nil:
			state = "error"
		case !res.match:
			state = "diff"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%t\n",
			state, res.target.Method, res.target.Path, res.goStatus, res.oldSt, res.target.Critical)
		if res.err != nil {
			fmt.Fprintf(w, "\t\t%v\t\t\t\n", res.err)
		}
	}
	w.Flush()
}
