package scraper

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/portal-planner/internal/fetch"
	"github.com/jonathan/portal-planner/internal/parsing"
	"github.com/jonathan/portal-planner/internal/portal"
	"github.com/jonathan/portal-planner/internal/types"
)

// fakePages serves testdata files by portal path.
type fakePages struct {
	mu     sync.Mutex
	pages  map[string]string
	errs   map[string]error
	visits []string
}

func newFakePages(t *testing.T, files map[string]string) *fakePages {
	t.Helper()
	pages := make(map[string]string, len(files))
	for path, file := range files {
		data, err := os.ReadFile(filepath.Join("testdata", file))
		require.NoError(t, err)
		pages[path] = string(data)
	}
	return &fakePages{pages: pages, errs: map[string]error{}}
}

func (f *fakePages) Get(_ context.Context, path string) (*fetch.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visits = append(f.visits, path)
	if err, ok := f.errs[path]; ok {
		return nil, err
	}
	html, ok := f.pages[path]
	if !ok {
		return nil, &fetch.Error{URL: path, StatusCode: http.StatusNotFound, Message: "HTTP status 404"}
	}
	return &fetch.Result{URL: path, FinalURL: path, HTML: html, StatusCode: http.StatusOK}, nil
}

func TestListSemesterReferences(t *testing.T) {
	pages := newFakePages(t, map[string]string{portal.StudentHomePath: "home.html"})

	refs, active, user, err := New(pages, Options{}).ListSemesterReferences(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []types.SemesterRef{
		{Label: "2022-2023, Fall", Query: "ZmFsbA"},
		{Label: "2022-2023, Spring", Query: "c3ByaW5n", Active: true},
	}, refs)
	assert.Equal(t, "2022-2023, Spring", active)
	assert.Equal(t, "Md. Arif Rahman", user)
}

func TestListSemesterReferences_NoActiveSemester(t *testing.T) {
	pages := &fakePages{pages: map[string]string{
		portal.StudentHomePath: `<select id="SemesterDropDown"><option value="x?q=1">2022-2023, Fall</option></select>`,
	}}

	_, _, _, err := New(pages, Options{}).ListSemesterReferences(context.Background())
	var parseErr *parsing.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "semester", parseErr.Field)
}

func TestFetchCatalog(t *testing.T) {
	pages := newFakePages(t, map[string]string{
		portal.CurriculumPath:                "curriculum.html",
		portal.CurriculumDetailPath + "101": "curriculum_101.html",
		portal.CurriculumDetailPath + "202": "curriculum_202.html",
	})

	catalog, err := New(pages, Options{MaxConcurrency: 1}).FetchCatalog(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, catalog.Len())

	codes := make([]string, 0, catalog.Len())
	for _, e := range catalog.Entries() {
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []string{"CSC1101", "CSC1102", "CSC2106", "CSC4299"}, codes)

	programming, ok := catalog.Get("CSC1102")
	require.True(t, ok)
	assert.Equal(t, "INTRODUCTION TO PROGRAMMING (REVISED)", programming.Name)
	assert.Equal(t, 3, programming.Credit)

	ds, _ := catalog.Get("CSC2106")
	assert.Equal(t, []string{"CSC1102", "MAT1102"}, ds.Prerequisites)

	intro, _ := catalog.Get("CSC1101")
	assert.Equal(t, 1, intro.Credit)
	assert.Empty(t, intro.Prerequisites)

	internship, _ := catalog.Get("CSC4299")
	assert.True(t, internship.Internship)
	assert.Equal(t, 6, internship.Credit)
}

func TestFetchCatalog_CurriculumFailureFailsCatalog(t *testing.T) {
	pages := newFakePages(t, map[string]string{
		portal.CurriculumPath:                "curriculum.html",
		portal.CurriculumDetailPath + "101": "curriculum_101.html",
	})

	catalog, err := New(pages, Options{}).FetchCatalog(context.Background())
	require.Error(t, err)
	assert.Nil(t, catalog)

	var fetchErr *fetch.Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "curriculum 202")
}

func TestParseCurriculum_BadCredit(t *testing.T) {
	doc := mustDoc(t, `<table class="table-bordered"><tr><th>h</th></tr><tr><td>A1</td><td>A</td><td>three</td><td></td></tr></table>`)

	_, err := ParseCurriculum(doc)
	var parseErr *parsing.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "credit", parseErr.Field)
}

func TestFetchGradeLedger(t *testing.T) {
	pages := newFakePages(t, map[string]string{portal.GradeReportPath: "grade_report.html"})

	rows, err := New(pages, Options{}).FetchGradeLedger(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []types.LedgerRow{
		{Code: "CSC1101", Name: "INTRODUCTION TO COMPUTER STUDIES", History: "(2021-2022, Fall) [A+]"},
		{Code: "CSC1102", Name: "INTRODUCTION TO PROGRAMMING", History: "(2021-2022, Fall) [F] (2022-2023, Fall) [B]"},
		{Code: "MAT1102", Name: "DIFFERENTIAL CALCULUS", History: "(2022-2023, Spring) [-]"},
	}, rows)
}

func TestFetchSemesterSchedule(t *testing.T) {
	ref := types.SemesterRef{Label: "2022-2023, Fall", Query: "ZmFsbA"}
	pages := newFakePages(t, map[string]string{portal.RegistrationPath + "ZmFsbA": "registration.html"})

	schedules, err := New(pages, Options{}).FetchSemesterSchedule(context.Background(), ref)
	require.NoError(t, err)
	require.Contains(t, schedules, ref.Label)

	routine := schedules[ref.Label]
	assert.Equal(t, types.ScheduleSlot{
		CourseName: "Physics 1", ClassID: "01451", Credit: 3, Section: "B19", Type: "Theory", Room: "DS0607",
	}, routine["Sunday"]["08:00 AM - 09:30 AM"])
	assert.Equal(t, "Lab", routine["Tuesday"]["01:00 PM - 03:00 PM"].Type)

	english := routine["Monday"]["10:00 AM - 11:30 AM"]
	assert.Equal(t, "English Reading Skills", english.CourseName)
	assert.Equal(t, "B19", english.Section)
	assert.Equal(t, 3, english.Credit)
	assert.Len(t, routine, 3)
}

func TestParseRegistration_MissingCourseTable(t *testing.T) {
	_, err := ParseRegistration(mustDoc(t, `<table><tr><td>only one</td></tr></table>`))
	var parseErr *parsing.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "registration", parseErr.Field)
}

func TestParseRegistration_MalformedSlot(t *testing.T) {
	html := `<table></table><table><tr><td><a>01451-PHYSICS 1 [B19]</a><div><span>Time: Sun (Theory) Room: 1</span></div></td><td>3-0</td></tr></table>`

	_, err := ParseRegistration(mustDoc(t, html))
	var parseErr *parsing.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "time slot", parseErr.Field)
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}
