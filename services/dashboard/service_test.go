package dashboard

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"datapeek/lib/catalog"
	"datapeek/lib/fetch"
	"datapeek/lib/fetchstore"
	"datapeek/lib/fetchstore/db"
	"datapeek/lib/testutil"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

var artsCsv = []byte("Gender,Age,S.S.C (GPA)\nFemale,22,4.33\nMale,23,5.00\nFemale,21,3.67\n")

var globalClient = resty.New()

func setupDashboard(t testing.TB, sources []catalog.Source) (string, *httptest.Server, func()) {
	res, cleanupService := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "dashboard",
		DbSchema: db.Schema,
	})

	dataDir := t.TempDir()
	client, err := fetch.NewClient(fetch.ClientOptions{})
	if err != nil {
		t.Fatal(err)
	}

	service := NewService(Options{
		Sources: sources,
		DataDir: dataDir,
		Client:  client,
		Store:   fetchstore.NewStore(res.DB),
	})
	server := httptest.NewServer(NewRouter(service))

	return dataDir, server, func() {
		server.Close()
		cleanupService()
	}
}

func TestSourcesEndpoint(t *testing.T) {
	_, server, cleanup := setupDashboard(t, catalog.Defaults())
	defer cleanup()

	res, err := globalClient.R().Get(server.URL + "/api/sources")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 200, res.StatusCode())

	var sources []catalog.Source
	err = json.Unmarshal(res.Body(), &sources)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, catalog.Defaults(), sources)
}

func TestPreviewEndpoint(t *testing.T) {
	sources := []catalog.Source{
		{Name: "arts_faculty", Path: "arts_faculty_data.csv"},
		{Name: "never_fetched", Path: "never_fetched.csv"},
	}
	dataDir, server, cleanup := setupDashboard(t, sources)
	defer cleanup()

	err := os.WriteFile(filepath.Join(dataDir, "arts_faculty_data.csv"), artsCsv, 0644)
	if err != nil {
		t.Fatal(err)
	}

	{
		res, err := globalClient.R().Get(server.URL + "/api/sources/arts_faculty/preview?n=2")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 200, res.StatusCode())

		var preview PreviewResponse
		err = json.Unmarshal(res.Body(), &preview)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 3, preview.TotalRows)
		require.Len(t, preview.Rows, 2)
		require.Equal(t, "Gender", preview.Columns[0].Name)
		require.Equal(t, "string", preview.Columns[0].Kind)
		require.Equal(t, "int", preview.Columns[1].Kind)
		require.Equal(t, "float", preview.Columns[2].Kind)
	}
	{
		// default n is 5, capped at the row count
		res, err := globalClient.R().Get(server.URL + "/api/sources/arts_faculty/preview")
		if err != nil {
			t.Fatal(err)
		}
		var preview PreviewResponse
		err = json.Unmarshal(res.Body(), &preview)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, preview.Rows, 3)
	}
	{
		res, err := globalClient.R().Get(server.URL + "/api/sources/nope/preview")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 404, res.StatusCode())
	}
	{
		// known source whose file was never downloaded
		res, err := globalClient.R().Get(server.URL + "/api/sources/never_fetched/preview")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 404, res.StatusCode())
	}
}

func TestPreviewRandomCsv(t *testing.T) {
	sources := []catalog.Source{{Name: "random", Path: "random.csv"}}
	dataDir, server, cleanup := setupDashboard(t, sources)
	defer cleanup()

	rndm := rand.New(rand.NewSource(42))
	err := os.WriteFile(filepath.Join(dataDir, "random.csv"), testutil.RandomCsv(rndm, 200), 0644)
	if err != nil {
		t.Fatal(err)
	}

	res, err := globalClient.R().Get(server.URL + "/api/sources/random/preview")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 200, res.StatusCode())

	var preview PreviewResponse
	err = json.Unmarshal(res.Body(), &preview)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 200, preview.TotalRows)
	require.Len(t, preview.Rows, 5)
}

func TestStatsEndpoints(t *testing.T) {
	sources := []catalog.Source{{Name: "arts_faculty", Path: "arts_faculty_data.csv"}}
	dataDir, server, cleanup := setupDashboard(t, sources)
	defer cleanup()

	err := os.WriteFile(filepath.Join(dataDir, "arts_faculty_data.csv"), artsCsv, 0644)
	if err != nil {
		t.Fatal(err)
	}

	{
		res, err := globalClient.R().Get(server.URL + "/api/sources/arts_faculty/describe?column=Age")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 200, res.StatusCode())

		var describe DescribeResponse
		err = json.Unmarshal(res.Body(), &describe)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 3, describe.Count)
		require.Equal(t, jsonFloat(22), describe.Mean)
		require.Equal(t, jsonFloat(21), describe.Min)
		require.Equal(t, jsonFloat(23), describe.Max)
	}
	{
		res, err := globalClient.R().Get(server.URL + "/api/sources/arts_faculty/counts?column=Gender")
		if err != nil {
			t.Fatal(err)
		}
		var counts CountsResponse
		err = json.Unmarshal(res.Body(), &counts)
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, []ValueCount{
			{Value: "Female", Count: 2},
			{Value: "Male", Count: 1},
		}, counts.Counts)
	}
	{
		res, err := globalClient.R().
			SetQueryParams(map[string]string{
				"key":   "Gender",
				"value": "S.S.C (GPA)",
			}).
			Get(server.URL + "/api/sources/arts_faculty/groupmean")
		if err != nil {
			t.Fatal(err)
		}
		var groups GroupMeanResponse
		err = json.Unmarshal(res.Body(), &groups)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, groups.Groups, 2)
		require.Equal(t, "Female", groups.Groups[0].Key)
		require.InDelta(t, 4.0, float64(groups.Groups[0].Mean), 1e-9)
		require.Equal(t, "Male", groups.Groups[1].Key)
		require.InDelta(t, 5.0, float64(groups.Groups[1].Mean), 1e-9)
	}
	{
		res, err := globalClient.R().Get(server.URL + "/api/sources/arts_faculty/hist?column=Age&bins=2")
		if err != nil {
			t.Fatal(err)
		}
		var hist HistogramResponse
		err = json.Unmarshal(res.Body(), &hist)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, hist.Bins, 2)
		require.Equal(t, 3, hist.Bins[0].Count+hist.Bins[1].Count)
	}
	{
		// misspelled column names suggest the right one
		res, err := globalClient.R().Get(server.URL + "/api/sources/arts_faculty/describe?column=age")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 404, res.StatusCode())
		require.Contains(t, string(res.Body()), "Age")
	}
}

func TestNonFiniteColumns(t *testing.T) {
	sources := []catalog.Source{{Name: "ratios", Path: "ratios.csv"}}
	dataDir, server, cleanup := setupDashboard(t, sources)
	defer cleanup()

	ratiosCsv := []byte("score,ratio\n1,1\nInf,Inf\n2,2\n-Inf,4\n3,3\n4,5\n")
	err := os.WriteFile(filepath.Join(dataDir, "ratios.csv"), ratiosCsv, 0644)
	if err != nil {
		t.Fatal(err)
	}

	{
		// Inf cells parse as numbers; summaries report them as null
		res, err := globalClient.R().Get(server.URL + "/api/sources/ratios/describe?column=ratio")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 200, res.StatusCode())
		require.Contains(t, string(res.Body()), `"count":6`)
		require.Contains(t, string(res.Body()), `"mean":null`)
		require.Contains(t, string(res.Body()), `"min":1`)
		require.Contains(t, string(res.Body()), `"max":null`)
	}
	{
		// histogram bins cover the finite values only
		res, err := globalClient.R().Get(server.URL + "/api/sources/ratios/hist?column=score&bins=2")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 200, res.StatusCode())

		var hist HistogramResponse
		err = json.Unmarshal(res.Body(), &hist)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, hist.Bins, 2)
		require.Equal(t, 2, hist.Bins[0].Count)
		require.Equal(t, 2, hist.Bins[1].Count)
		require.Equal(t, jsonFloat(4), hist.Bins[1].High)
	}
}

func TestFetchEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(artsCsv)
	}))
	defer upstream.Close()

	sources := []catalog.Source{
		{
			Name: "arts_faculty",
			Url:  upstream.URL + "/arts_faculty_data.csv",
			Path: "arts_faculty_data.csv",
		},
		{Name: "local_only", Path: "local_only.csv"},
	}
	dataDir, server, cleanup := setupDashboard(t, sources)
	defer cleanup()

	res, err := globalClient.R().Post(server.URL + "/api/sources/arts_faculty/fetch")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 200, res.StatusCode())

	var first FetchResponse
	err = json.Unmarshal(res.Body(), &first)
	if err != nil {
		t.Fatal(err)
	}
	require.False(t, first.Unchanged)
	require.Equal(t, int64(200), first.Record.Status)
	require.Equal(t, int64(len(artsCsv)), first.Record.Bytes)

	onDisk, err := os.ReadFile(filepath.Join(dataDir, "arts_faculty_data.csv"))
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, artsCsv, onDisk)

	{
		// identical payload comes back flagged unchanged
		res, err := globalClient.R().Post(server.URL + "/api/sources/arts_faculty/fetch")
		if err != nil {
			t.Fatal(err)
		}
		var second FetchResponse
		err = json.Unmarshal(res.Body(), &second)
		if err != nil {
			t.Fatal(err)
		}
		require.True(t, second.Unchanged)
		require.Equal(t, first.Record.Sha256, second.Record.Sha256)
	}
	{
		res, err := globalClient.R().Get(server.URL + "/api/sources/arts_faculty/history")
		if err != nil {
			t.Fatal(err)
		}
		var records []RecordInfo
		err = json.Unmarshal(res.Body(), &records)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, records, 2)
	}
	{
		res, err := globalClient.R().Post(server.URL + "/api/sources/local_only/fetch")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 400, res.StatusCode())
	}
}

func TestFetchUpstreamErrors(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())

	sources := []catalog.Source{{
		Name: "gone",
		Url:  upstream.URL + "/gone.csv",
		Path: "gone.csv",
	}}
	dataDir, server, cleanup := setupDashboard(t, sources)
	defer cleanup()

	{
		res, err := globalClient.R().Post(server.URL + "/api/sources/gone/fetch")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 502, res.StatusCode())

		_, err = os.Stat(filepath.Join(dataDir, "gone.csv"))
		require.True(t, os.IsNotExist(err))
	}
	{
		// the rejection still shows up in history
		res, err := globalClient.R().Get(server.URL + "/api/sources/gone/history")
		if err != nil {
			t.Fatal(err)
		}
		var records []RecordInfo
		err = json.Unmarshal(res.Body(), &records)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, records, 1)
		require.Equal(t, int64(404), records[0].Status)
	}

	upstream.Close()

	{
		// an unreachable remote records nothing
		res, err := globalClient.R().Post(server.URL + "/api/sources/gone/fetch")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, 502, res.StatusCode())

		res, err = globalClient.R().Get(server.URL + "/api/sources/gone/history")
		if err != nil {
			t.Fatal(err)
		}
		var records []RecordInfo
		err = json.Unmarshal(res.Body(), &records)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, records, 1)
	}
}

func TestMalformedCsv(t *testing.T) {
	sources := []catalog.Source{
		{Name: "ragged", Path: "ragged.csv"},
		{Name: "empty", Path: "empty.csv"},
	}
	dataDir, server, cleanup := setupDashboard(t, sources)
	defer cleanup()

	err := os.WriteFile(filepath.Join(dataDir, "ragged.csv"), []byte("a,b\n1\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	err = os.WriteFile(filepath.Join(dataDir, "empty.csv"), nil, 0644)
	if err != nil {
		t.Fatal(err)
	}

	res, err := globalClient.R().Get(server.URL + "/api/sources/ragged/preview")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 422, res.StatusCode())

	res, err = globalClient.R().Get(server.URL + "/api/sources/empty/preview")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 422, res.StatusCode())
}

func TestIndexAndHealthz(t *testing.T) {
	_, server, cleanup := setupDashboard(t, catalog.Defaults())
	defer cleanup()

	res, err := globalClient.R().Get(server.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 200, res.StatusCode())
	require.Contains(t, res.Header().Get("Content-Type"), "text/html")
	require.Contains(t, string(res.Body()), "<title>datapeek</title>")

	res, err = globalClient.R().Get(server.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, 200, res.StatusCode())
	require.Equal(t, "ok", string(res.Body()))
}
