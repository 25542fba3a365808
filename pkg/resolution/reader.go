package resolution

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ledongthuc/pdf"
)

// ReadPages returns the plain text of every page. A page that cannot be
// decoded yields "" instead of an error; only an unreadable container is
// reported.
func ReadPages(r io.ReaderAt, size int64) ([]string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages := make([]string, total)
	for i := 1; i <= total; i++ {
		pages[i-1] = pageText(reader, i)
	}
	return pages, nil
}

// ReadFile opens a PDF from disk and reads its pages.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return ReadPages(f, info.Size())
}

func pageText(reader *pdf.Reader, num int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WARN] Failed to decode pdf page %d: %v", num, r)
			text = ""
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		log.Printf("[WARN] Failed to extract text from pdf page %d: %v", num, err)
		return ""
	}
	return text
}
