package i18n

import (
	"embed"
	"encoding/json"
	"log"
	"net/http"
	"path/filepath"
	"sort"
	"sync"
)

//go:embed resources/*.json
var resources embed.FS

var (
	translations = make(map[string]map[string]string)
	once         sync.Once
)

// Init loads the embedded translations. It is safe to call more than once.
func Init() {
	once.Do(func() {
		files, _ := resources.ReadDir("resources")
		for _, f := range files {
			if filepath.Ext(f.Name()) != ".json" {
				continue
			}
			lang := f.Name()[:len(f.Name())-5]
			data, err := resources.ReadFile("resources/" + f.Name())
			if err != nil {
				log.Printf("i18n: cannot read %s: %v", f.Name(), err)
				continue
			}
			var t map[string]string
			if err := json.Unmarshal(data, &t); err != nil {
				log.Printf("i18n: cannot parse %s: %v", f.Name(), err)
				continue
			}
			translations[lang] = t
		}
	})
}

func T(lang, key string) string {
	Init()
	if t, ok := translations[lang]; ok {
		if val, ok := t[key]; ok {
			return val
		}
	}
	// Fallback to en
	if t, ok := translations["en"]; ok {
		if val, ok := t[key]; ok {
			return val
		}
	}
	return key
}

// Supported reports whether lang has a translation file.
func Supported(lang string) bool {
	Init()
	_, ok := translations[lang]
	return ok
}

// GetLang picks the language from the "lang" query parameter, then the
// "lang" cookie, then def.
func GetLang(r *http.Request, def string) string {
	if l := r.URL.Query().Get("lang"); l != "" && Supported(l) {
		return l
	}
	cookie, err := r.Cookie("lang")
	if err == nil && Supported(cookie.Value) {
		return cookie.Value
	}
	if def == "" {
		return "en"
	}
	return def
}

func GetAvailableLangs() []string {
	Init()
	langs := []string{}
	for l := range translations {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}
