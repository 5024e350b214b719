package main

import (
	"fmt"
	"log"
	"net/http"
)

// Fake OpenAI-compatible provider for local development. Point
// ai.base_url at http://localhost:3001 to test without burning credits.
func main() {
	http.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Received request: %s %s", r.Method, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": "Magandang araw! Start with a 50-30-20 split of your income and build a small emergency fund first."}}]}`)
	})

	log.Println("Mock AI provider starting on :3001")
	if err := http.ListenAndServe(":3001", nil); err != nil {
		log.Fatal(err)
	}
}
