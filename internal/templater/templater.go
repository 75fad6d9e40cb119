package templater

import (
	"regexp"
	"strconv"
	"strings"

	"dolabella/internal/domain"
	"dolabella/internal/utils"
)

var templatePattern = regexp.MustCompile(`{((\w+?)(:.*?)?)}`)

// Templater names a chapter file from a template such as
// "{manga:<.> - }v{volume:2} c{chapter:3}".
type Templater struct {
	Manga   domain.Manga
	Volume  string
	Chapter domain.Chapter
}

func New(manga domain.Manga, volume string, chapter domain.Chapter) *Templater {
	return &Templater{
		Manga:   manga,
		Volume:  volume,
		Chapter: chapter,
	}
}

func (t *Templater) handlePadded(value, options string) string {
	if options == "" {
		return value
	}

	length, _ := strconv.ParseInt(strings.ReplaceAll(options, ":", ""), 10, 32)
	return utils.PadLabel(value, int(length))
}

func (t *Templater) handleMangaTitle(options string) string {
	if t.Manga.Title == "" {
		return ""
	}

	if options == "" {
		return t.Manga.Title
	}

	cleanString := strings.ReplaceAll(options, ":", "")
	return strings.ReplaceAll(cleanString, "<.>", t.Manga.Title)
}

func (t *Templater) ExecTemplate(template string) string {
	newString := template
	for _, match := range templatePattern.FindAllStringSubmatch(template, -1) {
		replace := match[0]

		options := match[3]
		switch match[2] {
		case "chapter":
			replace = t.handlePadded(t.Chapter.Label, options)
		case "volume":
			replace = t.handlePadded(t.Volume, options)
		case "manga":
			replace = t.handleMangaTitle(options)
		case "id":
			replace = t.Chapter.ID
		}

		newString = strings.Replace(newString, match[0], replace, 1)
	}

	return newString
}
