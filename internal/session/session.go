package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dolabella/internal/domain"
	"dolabella/internal/download"
	"dolabella/internal/logger"
	"dolabella/internal/parse"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

var (
	ErrNotLocked   = errors.New("no manga has been locked")
	ErrNoSelection = errors.New("no volumes have been chosen")
	ErrNoVolumes   = errors.New("none of the selected volumes exist")
)

var (
	headerStyle    = color.New(color.Bold, color.FgCyan)
	titleStyle     = color.New(color.Bold, color.FgWhite)
	labelStyle     = color.New(color.FgHiBlue)
	promptStyle    = color.New(color.FgMagenta)
	successStyle   = color.New(color.FgGreen)
	warningStyle   = color.New(color.FgYellow)
	errorStyle     = color.New(color.FgRed)
	secondaryStyle = color.New(color.FgHiBlack)
)

const helpText = `In order to interact with commands, you should "lock" a manga: type its number
to select it, then download it, get its information, etc. Type "0" to release the lock.

Commands
  d      download the selected volumes, requires a lock and a volume selection
  i      show information about the locked manga
  v      select a range of volumes, e.g. "1-3", "5, 7" or "none"
  a      show the volumes and chapters of the locked manga
  l      list the search results again
  debug  print the session state
  exit   leave without downloading`

type State int

const (
	Idle State = iota
	MangaSelected
	VolumesSelected
	Downloading
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case MangaSelected:
		return "manga selected"
	case VolumesSelected:
		return "volumes selected"
	case Downloading:
		return "downloading"
	}
	return "unknown"
}

// Downloader runs a batch of volumes for one manga.
type Downloader interface {
	Run(ctx context.Context, manga domain.Manga, volumes []domain.Volume) (download.Report, error)
}

type Options struct {
	Language string
}

// Session is the prompt loop over a list of search results.
type Session struct {
	catalog    domain.Catalog
	downloader Downloader
	results    []domain.Manga
	opts       Options
	log        logger.Logger

	in    *bufio.Scanner
	lines chan string
	out   io.Writer

	locked    int
	selection []string
	state     State
	report    *download.Report
}

func New(catalog domain.Catalog, downloader Downloader, results []domain.Manga, in io.Reader, out io.Writer, opts Options, log logger.Logger) *Session {
	if opts.Language == "" {
		opts.Language = "en"
	}

	return &Session{
		catalog:    catalog,
		downloader: downloader,
		results:    results,
		opts:       opts,
		log:        log,
		in:         bufio.NewScanner(in),
		out:        out,
	}
}

func (s *Session) State() State {
	return s.state
}

// Locked returns the locked manga, false when nothing is locked.
func (s *Session) Locked() (domain.Manga, bool) {
	if s.locked == 0 {
		return domain.Manga{}, false
	}
	return s.results[s.locked-1], true
}

func (s *Session) Selection() []string {
	return s.selection
}

// Report is the outcome of the download, nil until one ran.
func (s *Session) Report() *download.Report {
	return s.report
}

// Prompt renders "(M n) [V ...] > ".
func (s *Session) Prompt() string {
	var b strings.Builder
	if s.locked != 0 {
		fmt.Fprintf(&b, "(M %d) ", s.locked)
	}
	if len(s.selection) > 0 {
		fmt.Fprintf(&b, "[V %s] ", strings.Join(s.selection, " "))
	}
	b.WriteString("> ")
	return b.String()
}

// Run lists the results and reads commands until a download finished, the
// user exits, the input ends or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	s.list()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		promptStyle.Fprint(s.out, s.Prompt())

		line, err := s.readLine(ctx)
		if errors.Is(err, io.EOF) {
			return s.in.Err()
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		cmd, err := ParseCommand(line)
		if err != nil {
			warningStyle.Fprintf(s.out, "%v. Try \"help\".\n", err)
			continue
		}

		done, err := s.Exec(ctx, cmd)
		if done {
			return err
		}
		if err != nil {
			errorStyle.Fprintln(s.out, err)
		}
	}
}

// Exec applies one command. done reports whether the session is over.
func (s *Session) Exec(ctx context.Context, cmd Command) (done bool, err error) {
	s.log.Debug().Str("state", s.state.String()).Msgf("exec %T", cmd)

	switch c := cmd.(type) {
	case Lock:
		return false, s.lock(c.Index)
	case Download:
		return s.download(ctx)
	case Info:
		return false, s.info()
	case SelectVolumes:
		return false, s.selectVolumes(ctx)
	case AggregateInfo:
		return false, s.aggregateInfo(ctx)
	case List:
		s.list()
		return false, nil
	case Help:
		fmt.Fprintln(s.out, helpText)
		return false, nil
	case Debug:
		s.debug()
		return false, nil
	case Exit:
		return true, nil
	default:
		return false, errors.Wrapf(domain.ErrUnknownCommand, "%T", cmd)
	}
}

func (s *Session) lock(index int) error {
	index, err := parse.Index(strconv.Itoa(index), len(s.results))
	if err != nil {
		return err
	}

	if index != s.locked {
		// a selection belongs to the manga it was made for
		s.selection = nil
	}
	s.locked = index

	if index == 0 {
		s.state = Idle
		return nil
	}

	s.state = MangaSelected
	if len(s.selection) > 0 {
		s.state = VolumesSelected
	}

	m := s.results[index-1]
	successStyle.Fprintf(s.out, "Locked %s.\n", m.Title)
	return nil
}

func (s *Session) selectVolumes(ctx context.Context) error {
	m, ok := s.Locked()
	if !ok {
		return ErrNotLocked
	}

	agg, err := s.catalog.Aggregate(ctx, m.ID)
	if err != nil {
		return errors.Wrap(err, "could not get volumes")
	}

	labels := make([]string, 0, len(agg))
	for _, v := range agg.Volumes() {
		labels = append(labels, v.Label)
	}

	fmt.Fprintf(s.out, "The following volumes are available: %s\n", strings.Join(labels, ", "))
	fmt.Fprintln(s.out, `Which volumes would you like to select? Add "none" to include chapters without a volume.`)
	promptStyle.Fprint(s.out, "> ")

	line, err := s.readLine(ctx)
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	if err != nil {
		return err
	}

	selection, err := parse.VolumeSelection(line)
	if err != nil {
		warningStyle.Fprintf(s.out, "Warning: range was not parsable: %v\n", err)
		return nil
	}

	s.selection = selection
	s.state = VolumesSelected
	fmt.Fprintf(s.out, "The following volumes will be downloaded: %s\n", strings.Join(selection, ", "))
	return nil
}

func (s *Session) download(ctx context.Context) (bool, error) {
	m, ok := s.Locked()
	if !ok {
		return false, ErrNotLocked
	}
	if len(s.selection) == 0 {
		return false, ErrNoSelection
	}

	agg, err := s.catalog.Aggregate(ctx, m.ID)
	if err != nil {
		return false, errors.Wrap(err, "could not get volumes")
	}

	volumes := agg.Select(s.selection)
	if len(volumes) == 0 {
		return false, errors.Wrapf(ErrNoVolumes, "%s", strings.Join(s.selection, ", "))
	}

	s.state = Downloading
	fmt.Fprintf(s.out, "Now downloading %s...\n", titleStyle.Sprint(m.Title))

	report, err := s.downloader.Run(ctx, m, volumes)
	s.state = Idle
	if err != nil {
		return true, err
	}
	s.report = &report

	for _, res := range report.Succeeded() {
		successStyle.Fprintf(s.out, "Dropped at %s\n", res.Path)
	}
	for _, res := range report.Failed() {
		if res.Skipped {
			warningStyle.Fprintf(s.out, "Skipped volume %s chapter %s\n", res.Volume, res.Chapter.Label)
			continue
		}
		errorStyle.Fprintf(s.out, "Volume %s chapter %s failed: %v\n", res.Volume, res.Chapter.Label, res.Err)
	}

	return true, nil
}

func (s *Session) info() error {
	m, ok := s.Locked()
	if !ok {
		return ErrNotLocked
	}

	year := "unknown"
	if m.Year != nil {
		year = strconv.Itoa(*m.Year)
	}

	headerStyle.Fprintln(s.out, m.Title)
	s.field("ID", m.ID)
	s.field("Year", year)
	s.field("Status", string(m.Status))
	s.field("Rating", string(m.ContentRating))
	s.field("Languages", strings.Join(m.AvailableLanguages, ", "))
	if m.Description != "" {
		fmt.Fprintf(s.out, "\n%s\n", m.Description)
	}
	return nil
}

func (s *Session) aggregateInfo(ctx context.Context) error {
	m, ok := s.Locked()
	if !ok {
		return ErrNotLocked
	}

	agg, err := s.catalog.Aggregate(ctx, m.ID)
	if err != nil {
		return errors.Wrap(err, "could not get volumes")
	}

	data, err := json.MarshalIndent(agg, "", "    ")
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, string(data))
	secondaryStyle.Fprintf(s.out, "%d volumes, %d chapters\n", len(agg), agg.ChapterCount())
	return nil
}

func (s *Session) list() {
	fmt.Fprintf(s.out, "Found %d manga(s).\n", len(s.results))

	for i, m := range s.results {
		year := "?"
		if m.Year != nil {
			year = strconv.Itoa(*m.Year)
		}

		available := "no"
		if m.HasLanguage(s.opts.Language) {
			available = "yes"
		}

		fmt.Fprintf(s.out, "%s %s (%s) (%s: %s)\n",
			labelStyle.Sprintf("[%d]", i+1), m.Title, year, s.opts.Language, available)
	}
}

func (s *Session) debug() {
	title := "None"
	if m, ok := s.Locked(); ok {
		title = fmt.Sprintf("%s (%s)", m.Title, m.ID)
	}

	s.field("State", s.state.String())
	s.field("Results", strconv.Itoa(len(s.results)))
	s.field("Locked", strconv.Itoa(s.locked))
	s.field("Manga", title)
	s.field("Volumes selected", strings.Join(s.selection, " "))
}

func (s *Session) field(label, value string) {
	fmt.Fprintf(s.out, "%s %s\n", labelStyle.Sprint(label+":"), value)
}

// readLine waits for the next input line or the end of ctx. Lines are read on
// a separate goroutine so a signal is not stuck behind a blocking read.
func (s *Session) readLine(ctx context.Context) (string, error) {
	if s.lines == nil {
		// one slot lets the reader park a line and exit after a cancelled read
		s.lines = make(chan string, 1)
		go func() {
			defer close(s.lines)
			for s.in.Scan() {
				s.lines <- s.in.Text()
			}
		}()
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}
