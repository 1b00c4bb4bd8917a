package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/gnemet/DeckForge/internal/pptx"
)

// Prints the text, notes and shapes of every slide of a deck as JSON.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run ./scripts/context_extractor <pptx_path>")
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}

	slides, err := pptx.ReadSlides(data)
	if err != nil {
		log.Fatal(err)
	}

	out, _ := json.MarshalIndent(slides, "", "  ")
	fmt.Println(string(out))
}
