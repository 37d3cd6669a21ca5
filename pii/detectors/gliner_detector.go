package detectors

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/daulet/tokenizers"
	onnxruntime "github.com/yalue/onnxruntime_go"
)

// DefaultThreshold is the model score below which spans are discarded during
// decoding when the caller does not specify one.
const DefaultThreshold = 0.4

// Model directory file names expected by NewGLiNERDetector.
const (
	ModelFileName     = "model.onnx"
	TokenizerFileName = "tokenizer.json"
	ConfigFileName    = "gliner_config.json"
)

// GLiNERDetector implements Detector using a GLiNER span-classification model
// exported to ONNX. The prompt is built as
//
//	[CLS] <<ENT>> label1 <<ENT>> label2 ... <<SEP>> word1 word2 ... [SEP]
//
// and the graph scores every (word span, label) pair; entities are the
// non-overlapping spans whose sigmoid score clears the threshold.
type GLiNERDetector struct {
	mu        sync.Mutex
	tokenizer *tokenizers.Tokenizer
	session   *onnxruntime.DynamicAdvancedSession
	config    glinerConfig
	modelPath string
}

// resolveSharedLibrary points onnxruntime_go at the runtime shared library.
// 1. Check if environment variable is set
// 2. If not set, try the usual build and install locations
func resolveSharedLibrary() {
	onnxLibPath := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")

	if onnxLibPath == "" {
		onnxPaths := []string{
			"./libonnxruntime.so",          // Production: next to the binary
			"./build/libonnxruntime.so",    // Development: in build directory
			"./libonnxruntime.dylib",       // macOS
			"./build/libonnxruntime.dylib", // macOS development
			"../libonnxruntime.so",         // Alternative location
		}

		for _, path := range onnxPaths {
			if _, err := os.Stat(path); err == nil {
				onnxLibPath = path
				break
			}
		}
	}

	if onnxLibPath != "" {
		onnxruntime.SetSharedLibraryPath(onnxLibPath)
	}
	// Otherwise leave the library default, which works when onnxruntime is
	// installed system-wide.
}

// NewGLiNERDetector creates a detector from a model directory containing
// model.onnx, tokenizer.json and gliner_config.json.
func NewGLiNERDetector(modelDir string) (*GLiNERDetector, error) {
	resolveSharedLibrary()

	// Initialize ONNX Runtime environment only if not already initialized
	if !onnxruntime.IsInitialized() {
		if err := onnxruntime.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("failed to initialize ONNX Runtime environment: %w", err)
		}
	}

	cfg, err := loadGLiNERConfig(filepath.Join(modelDir, ConfigFileName))
	if err != nil {
		return nil, err
	}

	tk, err := tokenizers.FromFile(filepath.Join(modelDir, TokenizerFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	return &GLiNERDetector{
		tokenizer: tk,
		config:    cfg,
		modelPath: filepath.Join(modelDir, ModelFileName),
	}, nil
}

// GetName returns the name of this detector
func (d *GLiNERDetector) GetName() string {
	return DetectorNameGLiNER
}

// initializeSession creates the ONNX session. Span count varies with the
// input, so a dynamic session is used instead of preallocated tensors.
func (d *GLiNERDetector) initializeSession() error {
	session, err := onnxruntime.NewDynamicAdvancedSession(d.modelPath,
		[]string{"input_ids", "attention_mask", "words_mask", "text_lengths", "span_idx", "span_mask"},
		[]string{"logits"},
		nil)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	d.session = session
	return nil
}

// promptEncoding is the tokenized GLiNER prompt. wordsMask holds, per token,
// the 1-based word number for the first subtoken of each text word and zero
// everywhere else.
type promptEncoding struct {
	inputIDs  []int64
	wordsMask []int64
	numWords  int
}

// encodeNoSpecial tokenizes a fragment without special tokens.
func (d *GLiNERDetector) encodeNoSpecial(text string) []int64 {
	encoding := d.tokenizer.EncodeWithOptions(text, false)
	ids := make([]int64, len(encoding.IDs))
	for i, id := range encoding.IDs {
		ids[i] = int64(id)
	}
	return ids
}

// encodePrompt builds the prompt token sequence for the given labels and
// words. Words that would push the sequence past the model's maximum length
// are dropped; numWords reports how many survived.
func (d *GLiNERDetector) encodePrompt(labels []string, words []word) promptEncoding {
	ids := []int64{d.config.ClsTokenID}
	mask := []int64{0}

	entIDs := d.encodeNoSpecial(d.config.EntToken)
	for _, label := range labels {
		ids = append(ids, entIDs...)
		labelIDs := d.encodeNoSpecial(label)
		ids = append(ids, labelIDs...)
		for i := 0; i < len(entIDs)+len(labelIDs); i++ {
			mask = append(mask, 0)
		}
	}

	sepIDs := d.encodeNoSpecial(d.config.SepToken)
	ids = append(ids, sepIDs...)
	for range sepIDs {
		mask = append(mask, 0)
	}

	// Reserve one slot for the trailing [SEP].
	budget := d.config.MaxSequenceLength - 1
	numWords := 0
	for wi, w := range words {
		wordIDs := d.encodeNoSpecial(w.text)
		if len(wordIDs) == 0 {
			wordIDs = []int64{d.config.PadTokenID}
		}
		if len(ids)+len(wordIDs) > budget {
			break
		}
		ids = append(ids, wordIDs...)
		mask = append(mask, int64(wi+1))
		for i := 1; i < len(wordIDs); i++ {
			mask = append(mask, 0)
		}
		numWords++
	}

	ids = append(ids, d.config.SepTokenID)
	mask = append(mask, 0)

	return promptEncoding{inputIDs: ids, wordsMask: mask, numWords: numWords}
}

// Detect processes the input and returns detected entities
func (d *GLiNERDetector) Detect(ctx context.Context, input DetectorInput) (DetectorOutput, error) {
	if len(input.Labels) == 0 {
		return DetectorOutput{Text: input.Text, Entities: []Entity{}}, nil
	}
	threshold := input.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	// The tokenizer handle is not safe for concurrent use.
	d.mu.Lock()
	defer d.mu.Unlock()

	// Initialize session on first use
	if d.session == nil {
		if err := d.initializeSession(); err != nil {
			return DetectorOutput{}, fmt.Errorf("failed to initialize session: %w", err)
		}
	}

	words := splitWords(input.Text)
	if len(words) == 0 {
		return DetectorOutput{Text: input.Text, Entities: []Entity{}}, nil
	}

	prompt := d.encodePrompt(input.Labels, words)
	if prompt.numWords == 0 {
		return DetectorOutput{Text: input.Text, Entities: []Entity{}}, nil
	}
	words = words[:prompt.numWords]

	entities, err := d.runInference(input.Text, words, input.Labels, prompt, threshold)
	if err != nil {
		return DetectorOutput{}, err
	}

	return DetectorOutput{
		Text:     input.Text,
		Entities: entities,
	}, nil
}

// runInference feeds one encoded prompt through the session and decodes the
// resulting span logits.
func (d *GLiNERDetector) runInference(text string, words []word, labels []string, prompt promptEncoding, threshold float64) ([]Entity, error) {
	seqLen := int64(len(prompt.inputIDs))
	numSpans := int64(len(words) * d.config.MaxWidth)

	attentionMask := make([]int64, seqLen)
	for i := range attentionMask {
		attentionMask[i] = 1
	}
	spanIdx, spanMask := buildSpanIndex(len(words), d.config.MaxWidth)

	inputTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, seqLen), prompt.inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer destroyTensor(inputTensor)

	maskTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, seqLen), attentionMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create mask tensor: %w", err)
	}
	defer destroyTensor(maskTensor)

	wordsMaskTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, seqLen), prompt.wordsMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create words mask tensor: %w", err)
	}
	defer destroyTensor(wordsMaskTensor)

	lengthTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, 1), []int64{int64(len(words))})
	if err != nil {
		return nil, fmt.Errorf("failed to create text length tensor: %w", err)
	}
	defer destroyTensor(lengthTensor)

	spanIdxTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, numSpans, 2), spanIdx)
	if err != nil {
		return nil, fmt.Errorf("failed to create span index tensor: %w", err)
	}
	defer destroyTensor(spanIdxTensor)

	spanMaskTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, numSpans), spanMask)
	if err != nil {
		return nil, fmt.Errorf("failed to create span mask tensor: %w", err)
	}
	defer destroyTensor(spanMaskTensor)

	outputs := []onnxruntime.Value{nil}
	err = d.session.Run(
		[]onnxruntime.Value{inputTensor, maskTensor, wordsMaskTensor, lengthTensor, spanIdxTensor, spanMaskTensor},
		outputs)
	if err != nil {
		return nil, fmt.Errorf("failed to run inference: %w", err)
	}

	logitsTensor, ok := outputs[0].(*onnxruntime.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected logits tensor type %T", outputs[0])
	}
	defer destroyTensor(logitsTensor)

	return decodeSpans(text, words, labels, logitsTensor.GetData(), d.config.MaxWidth, threshold), nil
}

func destroyTensor(v onnxruntime.Value) {
	if err := v.Destroy(); err != nil {
		fmt.Printf("Warning: failed to destroy tensor: %v\n", err)
	}
}

// Close implements the Detector interface
func (d *GLiNERDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error

	if d.session != nil {
		if err := d.session.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("failed to destroy session: %w", err))
		}
		d.session = nil
	}
	if d.tokenizer != nil {
		if err := d.tokenizer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close tokenizer: %w", err))
		}
		d.tokenizer = nil
	}
	if err := onnxruntime.DestroyEnvironment(); err != nil {
		errs = append(errs, fmt.Errorf("failed to destroy environment: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %v", errs)
	}
	return nil
}
