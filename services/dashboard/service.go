// Package dashboard serves the datapeek web surface: a json api over
// the catalog, previews, column stats and fetch history, plus a small
// embedded page that consumes it.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"datapeek/lib/catalog"
	"datapeek/lib/fetch"
	"datapeek/lib/fetchstore"
	"datapeek/lib/tabular"
	"datapeek/lib/tabular/stats"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	_ "embed"
)

var tracer = otel.Tracer("datapeek.services.dashboard")

//go:embed index.html
var indexHtml string

type Options struct {
	Sources []catalog.Source
	DataDir string
	Client  *fetch.Client
	Store   fetchstore.Store
}

type Service struct {
	sources []catalog.Source
	dataDir string
	client  *fetch.Client
	store   fetchstore.Store
}

func NewService(opts Options) Service {
	return Service{
		sources: opts.Sources,
		dataDir: opts.DataDir,
		client:  opts.Client,
		store:   opts.Store,
	}
}

// jsonFloat marshals NaN and ±Inf as null, which encoding/json
// otherwise rejects.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(f))
}

type ColumnInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type PreviewResponse struct {
	Source    string       `json:"source"`
	Columns   []ColumnInfo `json:"columns"`
	Rows      [][]string   `json:"rows"`
	TotalRows int          `json:"total_rows"`
}

type DescribeResponse struct {
	Column string    `json:"column"`
	Count  int       `json:"count"`
	Mean   jsonFloat `json:"mean"`
	Std    jsonFloat `json:"std"`
	Min    jsonFloat `json:"min"`
	Max    jsonFloat `json:"max"`
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type CountsResponse struct {
	Column string       `json:"column"`
	Counts []ValueCount `json:"counts"`
}

type GroupMeanEntry struct {
	Key   string    `json:"key"`
	Mean  jsonFloat `json:"mean"`
	Count int       `json:"count"`
}

type GroupMeanResponse struct {
	Key    string           `json:"key"`
	Value  string           `json:"value"`
	Groups []GroupMeanEntry `json:"groups"`
}

type HistogramBin struct {
	Low   jsonFloat `json:"low"`
	High  jsonFloat `json:"high"`
	Count int       `json:"count"`
}

type HistogramResponse struct {
	Column string         `json:"column"`
	Bins   []HistogramBin `json:"bins"`
}

type RecordInfo struct {
	Id         string `json:"id"`
	Source     string `json:"source"`
	Url        string `json:"url"`
	Path       string `json:"path"`
	Sha256     string `json:"sha256"`
	Bytes      int64  `json:"bytes"`
	Status     int64  `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	FetchedAt  int64  `json:"fetched_at"`
}

func recordInfo(r fetchstore.Record) RecordInfo {
	return RecordInfo{
		Id:         r.Id,
		Source:     r.Source,
		Url:        r.Url,
		Path:       r.Path,
		Sha256:     r.Sha256,
		Bytes:      r.Bytes,
		Status:     r.Status,
		DurationMs: r.Duration.Milliseconds(),
		FetchedAt:  r.FetchedAt.Unix(),
	}
}

type FetchResponse struct {
	Record    RecordInfo `json:"record"`
	Unchanged bool       `json:"unchanged"`
}

func writeJson(w http.ResponseWriter, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (s Service) source(r *http.Request) (catalog.Source, error) {
	return catalog.Find(s.sources, mux.Vars(r)["name"])
}

func (s Service) load(r *http.Request) (*tabular.Table, error) {
	src, err := s.source(r)
	if err != nil {
		return nil, err
	}
	return tabular.ReadFile(src.ResolvePath(s.dataDir))
}

func (s Service) handleIndex(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := w.Write([]byte(indexHtml))
	return err
}

func (s Service) handleHealthz(w http.ResponseWriter, r *http.Request) error {
	err := s.store.Ping(r.Context())
	if err != nil {
		return err
	}
	_, err = w.Write([]byte("ok"))
	return err
}

func (s Service) handleSources(w http.ResponseWriter, r *http.Request) error {
	return writeJson(w, s.sources)
}

func (s Service) handlePreview(w http.ResponseWriter, r *http.Request) error {
	src, err := s.source(r)
	if err != nil {
		return err
	}
	table, err := tabular.ReadFile(src.ResolvePath(s.dataDir))
	if err != nil {
		return err
	}

	columns := make([]ColumnInfo, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = ColumnInfo{Name: c.Name, Kind: c.Kind.String()}
	}
	return writeJson(w, PreviewResponse{
		Source:    src.Name,
		Columns:   columns,
		Rows:      table.Head(queryInt(r, "n", 5)),
		TotalRows: len(table.Rows),
	})
}

func (s Service) handleDescribe(w http.ResponseWriter, r *http.Request) error {
	table, err := s.load(r)
	if err != nil {
		return err
	}
	column := r.URL.Query().Get("column")
	values, err := table.Floats(column)
	if err != nil {
		return err
	}

	summary := stats.Describe(values)
	return writeJson(w, DescribeResponse{
		Column: column,
		Count:  summary.Count,
		Mean:   jsonFloat(summary.Mean),
		Std:    jsonFloat(summary.Std),
		Min:    jsonFloat(summary.Min),
		Max:    jsonFloat(summary.Max),
	})
}

func (s Service) handleCounts(w http.ResponseWriter, r *http.Request) error {
	table, err := s.load(r)
	if err != nil {
		return err
	}
	column := r.URL.Query().Get("column")
	values, err := table.Column(column)
	if err != nil {
		return err
	}

	counts := stats.ValueCounts(values)
	out := make([]ValueCount, len(counts))
	for i, c := range counts {
		out[i] = ValueCount{Value: c.Value, Count: c.Count}
	}
	return writeJson(w, CountsResponse{Column: column, Counts: out})
}

func (s Service) handleGroupMean(w http.ResponseWriter, r *http.Request) error {
	table, err := s.load(r)
	if err != nil {
		return err
	}
	key := r.URL.Query().Get("key")
	value := r.URL.Query().Get("value")
	keys, err := table.Column(key)
	if err != nil {
		return err
	}
	values, err := table.Floats(value)
	if err != nil {
		return err
	}

	groups := stats.GroupMean(keys, values)
	out := make([]GroupMeanEntry, len(groups))
	for i, g := range groups {
		out[i] = GroupMeanEntry{Key: g.Key, Mean: jsonFloat(g.Mean), Count: g.Count}
	}
	return writeJson(w, GroupMeanResponse{Key: key, Value: value, Groups: out})
}

func (s Service) handleHistogram(w http.ResponseWriter, r *http.Request) error {
	table, err := s.load(r)
	if err != nil {
		return err
	}
	column := r.URL.Query().Get("column")
	values, err := table.Floats(column)
	if err != nil {
		return err
	}

	bins := stats.Histogram(values, queryInt(r, "bins", 10))
	out := make([]HistogramBin, len(bins))
	for i, b := range bins {
		out[i] = HistogramBin{Low: jsonFloat(b.Low), High: jsonFloat(b.High), Count: b.Count}
	}
	return writeJson(w, HistogramResponse{Column: column, Bins: out})
}

func (s Service) handleFetch(w http.ResponseWriter, r *http.Request) error {
	src, err := s.source(r)
	if err != nil {
		return err
	}
	res, err := s.Fetch(r.Context(), src)
	if err != nil {
		return err
	}
	return writeJson(w, res)
}

// Fetch downloads a source, records the attempt in the history, and
// reports whether the contents changed since the previous fetch.
// Rejected downloads are recorded too so the failure shows up in the
// history.
func (s Service) Fetch(ctx context.Context, src catalog.Source) (FetchResponse, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()

	if src.Url == "" {
		return FetchResponse{}, fmt.Errorf("%w: %q", catalog.ErrNoUrl, src.Name)
	}

	prev, found, err := s.store.Latest(ctx, src.Name)
	if err != nil {
		return FetchResponse{}, err
	}

	dest := src.ResolvePath(s.dataDir)
	result, err := s.client.Download(ctx, src.Url, dest)
	if err != nil {
		span.SetStatus(codes.Error, "download failed")
		if result.StatusCode != 0 {
			_, recErr := s.store.Record(ctx, fetchstore.Record{
				Source:    src.Name,
				Url:       src.Url,
				Path:      dest,
				Sha256:    result.Sha256,
				Bytes:     int64(len(result.Body)),
				Status:    int64(result.StatusCode),
				Duration:  result.Duration,
				FetchedAt: result.FetchedAt,
			})
			if recErr != nil {
				slog.WarnContext(ctx, "failed to record rejected fetch", "source", src.Name, "err", recErr)
			}
		}
		return FetchResponse{}, err
	}

	rec, err := s.store.Record(ctx, fetchstore.Record{
		Source:    src.Name,
		Url:       src.Url,
		Path:      dest,
		Sha256:    result.Sha256,
		Bytes:     int64(len(result.Body)),
		Status:    int64(result.StatusCode),
		Duration:  result.Duration,
		FetchedAt: result.FetchedAt,
	})
	if err != nil {
		return FetchResponse{}, err
	}

	unchanged := found && prev.Sha256 == rec.Sha256
	slog.InfoContext(
		ctx, "fetched source",
		"source", src.Name,
		"bytes", rec.Bytes,
		"unchanged", unchanged,
	)
	return FetchResponse{Record: recordInfo(rec), Unchanged: unchanged}, nil
}

func (s Service) handleSourceHistory(w http.ResponseWriter, r *http.Request) error {
	src, err := s.source(r)
	if err != nil {
		return err
	}
	records, err := s.store.History(r.Context(), src.Name, int64(queryInt(r, "n", 20)))
	if err != nil {
		return err
	}
	out := make([]RecordInfo, len(records))
	for i, rec := range records {
		out[i] = recordInfo(rec)
	}
	return writeJson(w, out)
}

func (s Service) handleHistory(w http.ResponseWriter, r *http.Request) error {
	records, err := s.store.History(r.Context(), "", int64(queryInt(r, "n", 20)))
	if err != nil {
		return err
	}
	out := make([]RecordInfo, len(records))
	for i, rec := range records {
		out[i] = recordInfo(rec)
	}
	return writeJson(w, out)
}
