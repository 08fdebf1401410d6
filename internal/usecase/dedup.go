package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

var (
	titleDecorRe   = regexp.MustCompile(`\((feat\.?|with |live|acoustic|unplugged|remaster(?:ed)?|radio edit|demo|mono|stereo|bonus)[^)]*\)`)
	titleBracketRe = regexp.MustCompile(`\[[^]]*\]`)
	titleSuffixRe  = regexp.MustCompile(`-\s*(remaster(?:ed)?( \d{2,4})?|radio edit|live|acoustic|demo|bonus track|mono|stereo).*`)
	titleSpaceRe   = regexp.MustCompile(`\s+`)
)

// normalizeTitle срезает издательские украшения названия — "(Live)",
// "[Remastered]", "- Radio Edit" и подобные — чтобы варианты одного трека
// давали одну сигнатуру. Содержательные скобки ("(Tribute)") не трогаются.
func normalizeTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "’", "'")
	s = titleDecorRe.ReplaceAllString(s, "")
	s = titleBracketRe.ReplaceAllString(s, "")
	s = titleSuffixRe.ReplaceAllString(s, "")
	s = titleSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// DedupSignature — ключ нечёткой дедупликации (исполнитель, название).
// Обе части нормализуются при создании: исполнитель сравнивается строго
// по равенству, название — через TitleSimilarity.
type DedupSignature struct {
	Artist string
	Title  string
}

func NewDedupSignature(artist, title string) DedupSignature {
	return DedupSignature{
		Artist: strings.ToLower(strings.TrimSpace(artist)),
		Title:  normalizeTitle(title),
	}
}

// SignatureSet — множество уже принятых сигнатур.
type SignatureSet map[DedupSignature]struct{}

func (s SignatureSet) Add(sig DedupSignature) {
	s[sig] = struct{}{}
}

// TitleSimilarity возвращает нормализованную меру похожести двух названий в [0, 1].
// Функция подменяема: оркестратор не зависит от конкретного алгоритма.
type TitleSimilarity func(a, b string) float64

// DiffRatio — мера похожести на основе diff: удвоенная доля общих символов
// относительно суммарной длины строк (2*M/T).
func DiffRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}

	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 1.0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)

	var common int
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			common += utf8.RuneCountInString(d.Text)
		}
	}

	return 2.0 * float64(common) / float64(total)
}

// IsDuplicate проверяет, является ли пара (title, artist) почти-дубликатом
// одной из ранее принятых сигнатур: исполнитель совпадает без учёта регистра,
// а похожесть нормализованных названий превышает threshold.
// Множество seen не изменяется.
func IsDuplicate(title, artist string, seen SignatureSet, threshold float64, sim TitleSimilarity) bool {
	if len(seen) == 0 {
		return false
	}

	artistKey := strings.ToLower(strings.TrimSpace(artist))
	titleKey := normalizeTitle(title)
	for sig := range seen {
		if sig.Artist != artistKey {
			continue
		}
		if sim(titleKey, sig.Title) > threshold {
			return true
		}
	}

	return false
}
