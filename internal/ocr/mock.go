package ocr

import "context"

const MockEngineResponse = "それにも、当然ながら関心があった。"

// MockEngine returns fixed text, for running the panel without tesseract.
type MockEngine struct {
	Text string
}

func (m MockEngine) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	if m.Text == "" {
		return MockEngineResponse, nil
	}
	return m.Text, nil
}
