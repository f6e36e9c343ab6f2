// Command apitest runs a smoke suite against a running Luach API.
//
// Usage:
//
//	go run ./cmd/apitest -url http://localhost:8080 -key $API_KEY
//
// Without -key the location write tests are skipped.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status        string `json:"status"`
	PooledEngines int    `json:"pooled_engines"`
}

// HebrewDateResponse is the response for /hebrew-date/{date} and /civil-date
type HebrewDateResponse struct {
	Date       string `json:"date"`
	Weekday    string `json:"weekday"`
	Formatted  string `json:"formatted"`
	KeviahCode string `json:"keviah_code"`
}

type MoladResponse struct {
	Molad struct {
		Date     string `json:"date"`
		Hour     int    `json:"hour"`
		Minute   int    `json:"minute"`
		Chalakim int    `json:"chalakim"`
	} `json:"molad"`
	MonthName string `json:"month_name"`
}

type ZmanimResponse struct {
	Location       string    `json:"location"`
	TimeZone       string    `json:"timezone"`
	CandleLighting time.Time `json:"candle_lighting"`
	Havdalah       time.Time `json:"havdalah"`
}

type ParashaResponse struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Festival string `json:"festival"`
}

type Event struct {
	Name string     `json:"name"`
	Type string     `json:"type"`
	Date string     `json:"date"`
	Time *time.Time `json:"time"`
}

type HolidaysResponse struct {
	Year       int     `json:"year"`
	KeviahCode string  `json:"keviah_code"`
	Holidays   []Event `json:"holidays"`
}

type EventsResponse struct {
	From   string  `json:"from"`
	Days   int     `json:"days"`
	Events []Event `json:"events"`
}

type Location struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	out          io.Writer
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL, apiKey string, verbose bool, out io.Writer) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		out:     out,
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintln(tr.out, "Luach API Test Suite")
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintf(tr.out, "Base URL: %s\n", tr.baseURL)

	// Run test groups
	tr.testHealth()
	tr.testHebrewDates()
	tr.testMolad()
	tr.testZmanim()
	tr.testParasha()
	tr.testHolidays()
	tr.testEvents()
	tr.testEdgeCases()
	if tr.apiKey != "" {
		tr.testLocations()
	}

	// Print summary
	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	var health HealthResponse
	if err := tr.getData("/health", &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess(fmt.Sprintf("Health check passed (%d pooled engines)", health.PooledEngines))
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testHebrewDates() {
	tr.printSection("Date Conversion")

	testCases := []struct {
		path        string
		formatted   string
		description string
	}{
		{"/api/v1/hebrew-date/2024-10-03", "1 Tishrei 5785", "Rosh Hashanah 5785"},
		{"/api/v1/hebrew-date/2024-12-10", "9 Kislev 5785", "Mid Kislev"},
		{"/api/v1/hebrew-date/2024-03-24", "14 Adar II 5784", "Purim in a leap year"},
		{"/api/v1/hebrew-date/2025-03-14", "14 Adar 5785", "Purim in a common year"},
		{"/api/v1/hebrew-date/2024-04-23", "15 Nisan 5784", "Pesach 5784"},
		{"/api/v1/civil-date?year=5785&month=12&day=14", "14 Adar 5785", "Purim back to civil"},
	}

	for _, tc := range testCases {
		var data HebrewDateResponse
		if err := tr.getData(tc.path, &data); err != nil {
			tr.recordError(tc.path, err.Error())
			continue
		}
		if data.Formatted == tc.formatted {
			tr.recordSuccess(fmt.Sprintf("%s: %s, %s (%s)", data.Date, data.Formatted, data.Weekday, tc.description))
		} else {
			tr.recordError(tc.path, fmt.Sprintf("Expected '%s', got '%s'", tc.formatted, data.Formatted))
		}
	}

	var today HebrewDateResponse
	if err := tr.getData("/api/v1/hebrew-date/today", &today); err != nil {
		tr.recordError("Today", err.Error())
	} else {
		tr.recordSuccess(fmt.Sprintf("Today (%s): %s [%s]", today.Date, today.Formatted, today.KeviahCode))
	}
}

func (tr *TestRunner) testMolad() {
	tr.printSection("Molad")

	var data MoladResponse
	if err := tr.getData("/api/v1/molad/5785/7", &data); err != nil {
		tr.recordError("Molad Tishrei 5785", err.Error())
		return
	}
	m := data.Molad
	if m.Date == "2024-10-03" && m.Hour == 3 && m.Minute == 21 && m.Chalakim == 13 {
		tr.recordSuccess(fmt.Sprintf("Molad %s 5785: %s %d:%02d and %d chalakim",
			data.MonthName, m.Date, m.Hour, m.Minute, m.Chalakim))
	} else {
		tr.recordError("Molad Tishrei 5785", fmt.Sprintf("Got %s %d:%02d and %d chalakim", m.Date, m.Hour, m.Minute, m.Chalakim))
	}
}

func (tr *TestRunner) testZmanim() {
	tr.printSection("Zmanim")

	var data ZmanimResponse
	path := "/api/v1/zmanim?lat=31.7683&lon=35.2137&tz=Asia/Jerusalem&date=2024-12-13"
	if err := tr.getData(path, &data); err != nil {
		tr.recordError("Jerusalem", err.Error())
		return
	}

	wantCandles := time.Date(2024, 12, 13, 14, 18, 27, 0, time.UTC)
	wantHavdalah := time.Date(2024, 12, 14, 15, 26, 45, 0, time.UTC)
	if within(data.CandleLighting, wantCandles, 2*time.Second) && within(data.Havdalah, wantHavdalah, 2*time.Second) {
		tr.recordSuccess(fmt.Sprintf("Jerusalem: candles %s, havdalah %s",
			data.CandleLighting.Format("15:04"), data.Havdalah.Format("15:04")))
	} else {
		tr.recordError("Jerusalem", fmt.Sprintf("Got candles %s, havdalah %s", data.CandleLighting, data.Havdalah))
	}

	resp, err := tr.getRaw("/api/v1/zmanim?lat=78.2232&lon=15.6267&date=2024-12-13")
	if err != nil {
		tr.recordError("Polar", err.Error())
		return
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusUnprocessableEntity {
		tr.recordSuccess("Polar night rejected (Svalbard)")
	} else {
		tr.recordError("Polar", fmt.Sprintf("Expected HTTP 422, got %d", resp.StatusCode))
	}
}

func (tr *TestRunner) testParasha() {
	tr.printSection("Parasha")

	testCases := []struct {
		date     string
		diaspora bool
		want     string
	}{
		{"2024-12-14", true, "Vayishlach"},
		{"2025-03-18", true, "Vayakhel"},
		{"2022-07-30", true, "Matot-Masei"},
		{"2022-04-23", false, "Achrei Mot"},
		{"2022-04-23", true, "Pesach"},
		{"2024-10-19", true, "Sukkot"},
	}

	for _, tc := range testCases {
		var data ParashaResponse
		path := fmt.Sprintf("/api/v1/parasha/%s?diaspora=%v", tc.date, tc.diaspora)
		if err := tr.getData(path, &data); err != nil {
			tr.recordError(path, err.Error())
			continue
		}
		if data.Name == tc.want {
			tr.recordSuccess(fmt.Sprintf("%s (diaspora=%v): %s", data.Date, tc.diaspora, data.Name))
		} else {
			tr.recordError(path, fmt.Sprintf("Expected '%s', got '%s'", tc.want, data.Name))
		}
	}
}

func (tr *TestRunner) testHolidays() {
	tr.printSection("Holidays 5785")

	var data HolidaysResponse
	if err := tr.getData("/api/v1/holidays/5785?diaspora=true", &data); err != nil {
		tr.recordError("Holidays", err.Error())
		return
	}
	if data.KeviahCode != "5C1" {
		tr.recordError("Keviah", fmt.Sprintf("Expected 5C1, got %s", data.KeviahCode))
	}

	want := map[string]string{
		"Rosh Hashanah I":   "2024-10-03",
		"Chanukah: 1st Day": "2024-12-26",
		"Purim":             "2025-03-14",
		"Pesach I":          "2025-04-13",
	}
	found := 0
	for _, e := range data.Holidays {
		if date, ok := want[e.Name]; ok {
			found++
			if e.Date != date {
				tr.recordError(e.Name, fmt.Sprintf("Expected %s, got %s", date, e.Date))
			}
		}
		if tr.verbose {
			fmt.Fprintf(tr.out, "    %s %s\n", e.Date, e.Name)
		}
	}
	if found == len(want) {
		tr.recordSuccess(fmt.Sprintf("%d holidays, key dates match", len(data.Holidays)))
	} else {
		tr.recordError("Holidays", fmt.Sprintf("Found %d of %d key holidays", found, len(want)))
	}
}

func (tr *TestRunner) testEvents() {
	tr.printSection("Events")

	var data EventsResponse
	path := "/api/v1/events?lat=31.7683&lon=35.2137&tz=Asia/Jerusalem&diaspora=false&from=2024-12-08&days=7"
	if err := tr.getData(path, &data); err != nil {
		tr.recordError("Events", err.Error())
		return
	}

	names := make([]string, len(data.Events))
	for i, e := range data.Events {
		names[i] = e.Name
	}
	got := strings.Join(names, ", ")
	if got == "Candle lighting, Parashat Vayishlach, Havdalah" {
		tr.recordSuccess("Week of 2024-12-08: " + got)
	} else {
		tr.recordError("Events", "Got "+got)
	}

	resp, err := tr.getRaw(strings.Replace(path, "/events?", "/events.ics?", 1))
	if err != nil {
		tr.recordError("ICS", err.Error())
		return
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusOK && bytes.HasPrefix(body, []byte("BEGIN:VCALENDAR")) {
		tr.recordSuccess(fmt.Sprintf("ICS feed (%d bytes)", len(body)))
	} else {
		tr.recordError("ICS", fmt.Sprintf("HTTP %d", resp.StatusCode))
	}
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	testCases := []struct {
		path        string
		status      int
		description string
	}{
		{"/api/v1/hebrew-date/invalid", http.StatusBadRequest, "Invalid date format rejected"},
		{"/api/v1/hebrew-date/2025/12/25", http.StatusNotFound, "Wrong date format rejected"},
		{"/api/v1/hebrew-date/2024-02-30", http.StatusBadRequest, "Impossible date rejected"},
		{"/api/v1/civil-date?year=5785&month=13&day=1", http.StatusBadRequest, "Adar II in a common year rejected"},
		{"/api/v1/zmanim?lat=91&lon=0", http.StatusBadRequest, "Latitude out of range rejected"},
		{"/api/v1/zmanim?lat=31&lon=35&candle=500", http.StatusBadRequest, "Offset out of range rejected"},
		{"/api/v1/events?lat=31&lon=35&days=401", http.StatusBadRequest, "Oversized horizon rejected"},
		{"/api/v1/events?lat=31", http.StatusBadRequest, "Half a coordinate rejected"},
		{"/api/v1/zmanim?lat=31&lon=35&elevation=10000", http.StatusBadRequest, "Elevation out of range rejected"},
	}

	for _, tc := range testCases {
		resp, err := tr.getRaw(tc.path)
		if err != nil {
			tr.recordError(tc.path, err.Error())
			continue
		}
		resp.Body.Close()
		if resp.StatusCode == tc.status {
			tr.recordSuccess(tc.description)
		} else {
			tr.recordError(tc.path, fmt.Sprintf("Expected HTTP %d, got %d", tc.status, resp.StatusCode))
		}
	}
}

func (tr *TestRunner) testLocations() {
	tr.printSection("Saved Locations")

	name := fmt.Sprintf("apitest-%d", time.Now().UnixNano())
	body := fmt.Sprintf(`{"name":%q,"latitude":31.7683,"longitude":35.2137,"timezone":"Asia/Jerusalem","diaspora":false}`, name)

	var loc Location
	if err := tr.send(http.MethodPost, "/api/v1/locations", body, http.StatusCreated, &loc); err != nil {
		tr.recordError("Create", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("Created location %d (%s)", loc.ID, loc.Name))

	var zm ZmanimResponse
	if err := tr.getData(fmt.Sprintf("/api/v1/locations/%d/zmanim?date=2024-12-13", loc.ID), &zm); err != nil {
		tr.recordError("Location zmanim", err.Error())
	} else {
		tr.recordSuccess(fmt.Sprintf("Location zmanim: candles %s", zm.CandleLighting.Format(time.RFC3339)))
	}

	if err := tr.send(http.MethodDelete, fmt.Sprintf("/api/v1/locations/%d", loc.ID), "", http.StatusOK, nil); err != nil {
		tr.recordError("Delete", err.Error())
		return
	}
	tr.recordSuccess("Deleted location")
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) getData(path string, target any) error {
	resp, err := tr.getRaw(path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decode(resp, target)
}

func (tr *TestRunner) getRaw(path string) (*http.Response, error) {
	return tr.client.Get(tr.baseURL + path)
}

func (tr *TestRunner) send(method, path, body string, status int, target any) error {
	req, err := http.NewRequest(method, tr.baseURL+path, strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("X-API-Key", tr.apiKey)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := tr.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != status {
		return fmt.Errorf("HTTP %d, want %d", resp.StatusCode, status)
	}
	if target == nil {
		return nil
	}
	return decode(resp, target)
}

func decode(resp *http.Response, target any) error {
	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return fmt.Errorf("API error (HTTP %d): %s", resp.StatusCode, errMsg)
	}

	if err := json.Unmarshal(apiResp.Data, target); err != nil {
		return fmt.Errorf("data parse error: %w", err)
	}
	return nil
}

func within(got, want time.Time, tolerance time.Duration) bool {
	d := got.Sub(want)
	return d >= -tolerance && d <= tolerance
}

func (tr *TestRunner) printSection(name string) {
	fmt.Fprintln(tr.out)
	fmt.Fprintf(tr.out, "--- %s ---\n", name)
	fmt.Fprintln(tr.out)
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Fprintf(tr.out, "  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Fprintf(tr.out, "  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Fprintln(tr.out)
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintln(tr.out, "Summary")
	fmt.Fprintln(tr.out, "==============================================")
	fmt.Fprintf(tr.out, "  Passed: %d\n", tr.successCount)
	fmt.Fprintf(tr.out, "  Failed: %d\n", tr.errorCount)
	fmt.Fprintln(tr.out)

	if tr.errorCount > 0 {
		fmt.Fprintln(tr.out, "Failures:")
		for _, err := range tr.errors {
			fmt.Fprintf(tr.out, "  • %s\n", err)
		}
		fmt.Fprintln(tr.out)
	}

	if tr.errorCount == 0 {
		fmt.Fprintln(tr.out, "All tests passed! ✓")
	} else {
		fmt.Fprintf(tr.out, "Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	apiKey := flag.String("key", os.Getenv("API_KEY"), "API key for location write tests")
	verbose := flag.Bool("v", false, "Verbose output (list holidays)")
	flag.Parse()

	// Check if server is reachable
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *apiKey, *verbose, os.Stdout)
	runner.Run()

	// Exit with error code if tests failed
	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
