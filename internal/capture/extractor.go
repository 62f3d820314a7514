// Package capture turns kiosk face photos into embedding vectors. The
// kiosk camera delivers pre-cropped face images; this package runs the
// ArcFace ONNX model over them.
package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"math"

	ort "github.com/yalue/onnxruntime_go"
)

// Extractor produces one embedding per face photo. Implementations are
// not safe for concurrent use unless documented otherwise.
type Extractor interface {
	// ExtractFromImage decodes a face photo and returns its embedding.
	ExtractFromImage(imageData []byte) ([]float32, error)
	// Dim is the embedding dimensionality.
	Dim() int
	Close()
}

// ONNXExtractor extracts face embeddings using the ArcFace ONNX model.
type ONNXExtractor struct {
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
	inputW       int
	inputH       int
	embDim       int
}

// NewONNXExtractor loads the ArcFace ONNX model.
func NewONNXExtractor(modelPath string, embDim int) (*ONNXExtractor, error) {
	// ArcFace w600k_r50 expects 112x112 input
	inputW, inputH := 112, 112

	inputShape := ort.NewShape(1, 3, int64(inputH), int64(inputW))
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	outputShape := ort.NewShape(1, int64(embDim))
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input.1"},
		[]string{"683"},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create extractor session: %w", err)
	}

	return &ONNXExtractor{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		inputW:       inputW,
		inputH:       inputH,
		embDim:       embDim,
	}, nil
}

// ExtractFromImage decodes the photo, preprocesses it to the model input
// layout, and returns an L2-normalized embedding.
func (e *ONNXExtractor) ExtractFromImage(imageData []byte) ([]float32, error) {
	img, err := jpeg.Decode(bytes.NewReader(imageData))
	if err != nil {
		// Try other formats
		img, _, err = image.Decode(bytes.NewReader(imageData))
		if err != nil {
			return nil, fmt.Errorf("decode image: %w", err)
		}
	}
	return e.extract(preprocess(img, e.inputW, e.inputH))
}

func (e *ONNXExtractor) extract(faceData []float32) ([]float32, error) {
	copy(e.inputTensor.GetData(), faceData)

	if err := e.session.Run(); err != nil {
		return nil, fmt.Errorf("run embedding: %w", err)
	}

	embedding := make([]float32, e.embDim)
	copy(embedding, e.outputTensor.GetData())

	normalize(embedding)
	return embedding, nil
}

func (e *ONNXExtractor) Dim() int {
	return e.embDim
}

func (e *ONNXExtractor) Close() {
	if e.session != nil {
		e.session.Destroy()
	}
	if e.inputTensor != nil {
		e.inputTensor.Destroy()
	}
	if e.outputTensor != nil {
		e.outputTensor.Destroy()
	}
}

// preprocess converts an image to CHW float32 with ArcFace normalization:
//
//	pixel = (pixel - 127.5) / 127.5
func preprocess(img image.Image, targetW, targetH int) []float32 {
	resized := resizeImage(img, targetW, targetH)
	bounds := resized.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	data := make([]float32, 3*h*w)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := resized.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()

			// Convert from 16-bit to 8-bit
			rf := float32(r >> 8)
			gf := float32(g >> 8)
			bf := float32(b >> 8)

			// CHW layout: [C][H][W]
			idx := y*w + x
			data[0*h*w+idx] = (rf - 127.5) / 127.5 // R
			data[1*h*w+idx] = (gf - 127.5) / 127.5 // G
			data[2*h*w+idx] = (bf - 127.5) / 127.5 // B
		}
	}

	return data
}

// resizeImage performs nearest-neighbour resize (fast, good enough for ML input).
func resizeImage(img image.Image, targetW, targetH int) image.Image {
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))

	for y := 0; y < targetH; y++ {
		for x := 0; x < targetW; x++ {
			srcX := bounds.Min.X + x*srcW/targetW
			srcY := bounds.Min.Y + y*srcH/targetH
			dst.Set(x, y, img.At(srcX, srcY))
		}
	}

	return dst
}

// normalize performs L2 normalization in-place.
func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := float32(math.Sqrt(sum))
	if norm > 0 {
		for i := range v {
			v[i] /= norm
		}
	}
}
