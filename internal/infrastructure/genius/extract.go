package genius

import (
	"html"
	"regexp"
	"strings"
)

// Шаблоны мусорных страниц, которые поиск выдаёт вместо текстов песен.
var badTerms = []string{
	"videography", "discography", "tracklist", "contributors",
	"spotify new music friday", "annotated", "playlist", "album",
}

var (
	featRe       = regexp.MustCompile(`\(feat\.?[^)]*\)`)
	withRe       = regexp.MustCompile(`\(with [^)]*\)`)
	bracketsRe   = regexp.MustCompile(`\[[^]]*\]`)
	editionRe    = regexp.MustCompile(`-\s*(remaster(?:ed)?( \d{2,4})?|radio edit|live|bonus track|mono|stereo).*`)
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9\s&']`)
	spacesRe     = regexp.MustCompile(`\s+`)
	containerRe  = regexp.MustCompile(`(?i)<div[^>]*data-lyrics-container="true"[^>]*>`)
	divTagRe     = regexp.MustCompile(`(?is)</?div[^>]*>`)
	breakRe      = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagRe        = regexp.MustCompile(`(?s)<[^>]+>`)
	verseStartRe = regexp.MustCompile(`(?i)\[Verse\s*\d*[^]]*\]`)
	sectionRe    = regexp.MustCompile(`(?s)\[.*?\]`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// минимальное число слов, чтобы считать извлечённый блок текстом песни
const minLyricsWords = 10

// normText выполняет базовую чистку строки: типографские кавычки и пробелы.
func normText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "’", "'")
	s = strings.ReplaceAll(s, "“", `"`)
	s = strings.ReplaceAll(s, "”", `"`)
	return s
}

// cleanTitle приводит название к нижнему регистру и срезает типовые
// украшения: (feat.), [Live], "- Remastered" и подобные.
func cleanTitle(s string) string {
	s = strings.ToLower(normText(s))
	s = featRe.ReplaceAllString(s, "")
	s = withRe.ReplaceAllString(s, "")
	s = bracketsRe.ReplaceAllString(s, "")
	s = editionRe.ReplaceAllString(s, "")
	s = nonAlnumRe.ReplaceAllString(s, " ")
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// slugPath строит канонический путь страницы лирики вида drake-headlines-lyrics.
func slugPath(artist, title string) string {
	a := strings.ReplaceAll(strings.ReplaceAll(cleanTitle(artist), "&", "and"), " ", "-")
	t := strings.ReplaceAll(strings.ReplaceAll(cleanTitle(title), "&", "and"), " ", "-")
	return a + "-" + t + "-lyrics"
}

// isGoodHit отсеивает страницы, не являющиеся текстами песен.
func isGoodHit(fullTitle, path, url string) bool {
	fullTitle = strings.ToLower(fullTitle)
	path = strings.ToLower(path)
	for _, term := range badTerms {
		if strings.Contains(fullTitle, term) || strings.Contains(path, term) {
			return false
		}
	}

	return strings.Contains(strings.ToLower(url), "/lyrics")
}

// balancedDivBody возвращает содержимое div от позиции сразу после
// открывающего тега до парного закрывающего с учётом вложенных div.
// false — закрывающий тег не найден.
func balancedDivBody(s string) (string, bool) {
	lower := strings.ToLower(s)
	depth := 1
	pos := 0
	for {
		open := strings.Index(lower[pos:], "<div")
		cls := strings.Index(lower[pos:], "</div")
		if cls < 0 {
			return "", false
		}
		if open >= 0 && open < cls {
			depth++
			pos += open + len("<div")
			continue
		}
		depth--
		if depth == 0 {
			return s[:pos+cls], true
		}
		pos += cls + len("</div")
	}
}

// extractLyricsFromHTML достаёт текст из блоков <div data-lyrics-container>
// и чистит структурные маркеры разделов. Пустая строка означает,
// что на странице нет пригодного текста.
func extractLyricsFromHTML(pageHTML string) string {
	if pageHTML == "" {
		return ""
	}

	locs := containerRe.FindAllStringIndex(pageHTML, -1)
	if len(locs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(locs))
	for _, loc := range locs {
		body, ok := balancedDivBody(pageHTML[loc[1]:])
		if !ok {
			continue
		}
		block := breakRe.ReplaceAllString(body, "\n")
		block = divTagRe.ReplaceAllString(block, "\n")
		block = tagRe.ReplaceAllString(block, "")
		block = html.UnescapeString(block)
		block = strings.TrimSpace(block)
		if block != "" {
			parts = append(parts, block)
		}
	}

	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if loc := verseStartRe.FindStringIndex(text); loc != nil {
		text = text[loc[0]:]
	}
	text = sectionRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(multiSpaceRe.ReplaceAllString(text, "\n"))

	if len(strings.Fields(text)) < minLyricsWords {
		return ""
	}

	return text
}
