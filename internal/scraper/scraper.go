// Package scraper extracts typed academic records from portal pages.
package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/portal-planner/internal/fetch"
	"github.com/jonathan/portal-planner/internal/parsing"
	"github.com/jonathan/portal-planner/internal/portal"
	"github.com/jonathan/portal-planner/internal/types"
)

// DefaultMaxConcurrency bounds the number of curriculum pages fetched at once.
const DefaultMaxConcurrency = 4

// Page selectors.
const (
	semesterOptionSelector = "#SemesterDropDown > option"
	userNameSelector       = ".navbar-link"
	curriculumIDAttr       = "curriculumid"
	curriculumRowSelector  = ".table-bordered tr:not(:first-child)"
	gradeRowSelector       = "table:not(:first-child) tr:not(:first-child):has(td:nth-child(3):not(:empty))"
	slotSelector           = "div > span"
)

var semesterQueryPattern = regexp.MustCompile(`q=(.*)`)

// PageSource fetches portal pages by path. *portal.Session implements it.
type PageSource interface {
	Get(ctx context.Context, path string) (*fetch.Result, error)
}

// Options configures a Scraper.
type Options struct {
	MaxConcurrency int
	Logger         *zap.Logger
}

// Scraper reads records from an authenticated portal session.
type Scraper struct {
	pages          PageSource
	maxConcurrency int
	logger         *zap.Logger
}

// New binds a scraper to a session.
func New(pages PageSource, opts Options) *Scraper {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Scraper{
		pages:          pages,
		maxConcurrency: opts.MaxConcurrency,
		logger:         opts.Logger,
	}
}

// ListSemesterReferences reads the semester selector on the student home page. It
// also returns the active semester label and the student's display name.
func (s *Scraper) ListSemesterReferences(ctx context.Context) ([]types.SemesterRef, string, string, error) {
	doc, err := s.document(ctx, portal.StudentHomePath)
	if err != nil {
		return nil, "", "", err
	}

	var refs []types.SemesterRef
	active := ""
	doc.Find(semesterOptionSelector).Each(func(_ int, opt *goquery.Selection) {
		value, _ := opt.Attr("value")
		m := semesterQueryPattern.FindStringSubmatch(value)
		if m == nil {
			s.logger.Debug("semester option without query", zap.String("value", value))
			return
		}
		ref := types.SemesterRef{
			Label: strings.TrimSpace(opt.Text()),
			Query: m[1],
		}
		if _, selected := opt.Attr("selected"); selected {
			ref.Active = true
			active = ref.Label
		}
		refs = append(refs, ref)
	})

	if active == "" {
		return nil, "", "", &parsing.ParseError{
			Field:   "semester",
			Input:   portal.StudentHomePath,
			Message: "no active semester selected",
		}
	}

	user := parsing.NormalizeDisplayName(doc.Find(userNameSelector).First().Text())
	return refs, active, user, nil
}

// FetchCatalog reads every curriculum linked from the curriculum page and merges
// them in link order. When a course appears in several curricula the later one wins.
func (s *Scraper) FetchCatalog(ctx context.Context) (*types.Catalog, error) {
	doc, err := s.document(ctx, portal.CurriculumPath)
	if err != nil {
		return nil, err
	}

	var ids []string
	doc.Find("[" + curriculumIDAttr + "]").Each(func(_ int, sel *goquery.Selection) {
		if id, ok := sel.Attr(curriculumIDAttr); ok {
			ids = append(ids, id)
		}
	})

	parts := make([]*types.Catalog, len(ids))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			c, err := s.fetchCurriculum(gCtx, id)
			if err != nil {
				return fmt.Errorf("curriculum %s: %w", id, err)
			}
			parts[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	catalog := types.NewCatalog()
	for _, part := range parts {
		catalog.Merge(part)
	}
	s.logger.Debug("catalog fetched", zap.Int("curricula", len(ids)), zap.Int("courses", catalog.Len()))
	return catalog, nil
}

func (s *Scraper) fetchCurriculum(ctx context.Context, id string) (*types.Catalog, error) {
	doc, err := s.document(ctx, portal.CurriculumDetailPath+id)
	if err != nil {
		return nil, err
	}
	return ParseCurriculum(doc)
}

// ParseCurriculum reads the course table of one curriculum page.
func ParseCurriculum(doc *goquery.Document) (*types.Catalog, error) {
	catalog := types.NewCatalog()
	var parseErr error
	doc.Find(curriculumRowSelector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		code := cellText(row, 1)
		credit, err := parsing.MaxCredit(cellText(row, 3))
		if err != nil {
			parseErr = fmt.Errorf("course %s: %w", code, err)
			return false
		}
		prereqs := []string{}
		row.Find("td:nth-child(4) li").Each(func(_ int, li *goquery.Selection) {
			prereqs = append(prereqs, strings.TrimSpace(li.Text()))
		})
		catalog.Add(types.NewCatalogEntry(code, cellText(row, 2), credit, prereqs))
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return catalog, nil
}

// FetchGradeLedger reads the raw grade report rows.
func (s *Scraper) FetchGradeLedger(ctx context.Context) ([]types.LedgerRow, error) {
	doc, err := s.document(ctx, portal.GradeReportPath)
	if err != nil {
		return nil, err
	}
	return ParseGradeReport(doc), nil
}

// ParseGradeReport reads every grade report row that has a history cell.
func ParseGradeReport(doc *goquery.Document) []types.LedgerRow {
	var rows []types.LedgerRow
	doc.Find(gradeRowSelector).Each(func(_ int, row *goquery.Selection) {
		rows = append(rows, types.LedgerRow{
			Code:    cellText(row, 1),
			Name:    cellText(row, 2),
			History: cellText(row, 3),
		})
	})
	return rows
}

// FetchSemesterSchedule reads the registration page of one semester. The result is
// keyed by the semester label.
func (s *Scraper) FetchSemesterSchedule(ctx context.Context, ref types.SemesterRef) (map[string]types.SemesterRoutine, error) {
	doc, err := s.document(ctx, portal.RegistrationPath+ref.Query)
	if err != nil {
		return nil, err
	}
	routine, err := s.parseRegistration(doc)
	if err != nil {
		return nil, fmt.Errorf("semester %q: %w", ref.Label, err)
	}
	return map[string]types.SemesterRoutine{ref.Label: routine}, nil
}

// ParseRegistration reads the class routine from a registration page.
func ParseRegistration(doc *goquery.Document) (types.SemesterRoutine, error) {
	return New(nil, Options{}).parseRegistration(doc)
}

func (s *Scraper) parseRegistration(doc *goquery.Document) (types.SemesterRoutine, error) {
	tables := doc.Find("table")
	if tables.Length() < 2 {
		return nil, &parsing.ParseError{
			Field:   "registration",
			Message: fmt.Sprintf("expected a course table, found %d tables", tables.Length()),
		}
	}

	routine := make(types.SemesterRoutine)
	var parseErr error
	tables.Eq(1).Find("td:first-child").EachWithBreak(func(_ int, cell *goquery.Selection) bool {
		if cell.Text() == "" {
			return true
		}

		title := cell.Find("a").First().Text()
		course, ok := parsing.ParseCourseTitle(title)
		if !ok {
			s.logger.Debug("unrecognized course title", zap.String("title", title))
		}

		credit, err := parsing.MaxCredit(strings.TrimSpace(cell.NextAllFiltered("td").First().Text()))
		if err != nil {
			parseErr = fmt.Errorf("course %q: %w", title, err)
			return false
		}

		cell.Find(slotSelector).EachWithBreak(func(_ int, span *goquery.Selection) bool {
			text := span.Text()
			if !parsing.IsTimeSlotText(text) {
				return true
			}
			slot, err := parsing.ParseTimeSlot(text)
			if err != nil {
				parseErr = fmt.Errorf("course %q: %w", title, err)
				return false
			}
			routine.Add(slot.Day, slot.TimeRange, types.ScheduleSlot{
				CourseName: course.Name,
				ClassID:    course.ClassID,
				Credit:     credit,
				Section:    course.Section,
				Type:       slot.Type,
				Room:       slot.Room,
			})
			return true
		})
		return parseErr == nil
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return routine, nil
}

func (s *Scraper) document(ctx context.Context, path string) (*goquery.Document, error) {
	page, err := s.pages.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, &parsing.ParseError{Field: "html", Input: path, Message: "failed to parse HTML", Cause: err}
	}
	return doc, nil
}

// cellText returns the trimmed text of the n-th (1-based) cell of a row.
func cellText(row *goquery.Selection, n int) string {
	return strings.TrimSpace(row.Find(fmt.Sprintf("td:nth-child(%d)", n)).First().Text())
}
