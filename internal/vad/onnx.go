// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package vad

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// OnnxInferencer runs a Silero-style streaming VAD ONNX model: inputs
// {input, state, sr}, outputs {output, stateN}. The recurrent LSTM state
// and the short sample-context window are preserved across calls so a
// session's posterior stream is coherent frame-to-frame.
type OnnxInferencer struct {
	session *ort.DynamicAdvancedSession

	sampleRate  int
	contextSize int
	state       []float32
	context     []float32

	mu sync.Mutex
}

// NewOnnxInferencer loads the model at modelPath. A load failure here is
// fatal to session start, per the VAD model-load contract.
func NewOnnxInferencer(modelPath string, sampleRate int) (*OnnxInferencer, error) {
	if sampleRate != 8000 && sampleRate != 16000 {
		return nil, fmt.Errorf("vad onnx backend requires sample rate 8000 or 16000, got %d", sampleRate)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		// Already-initialized is not an error for our purposes.
		_ = err
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("vad onnx session options: %w", err)
	}
	defer opts.Destroy()

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{"input", "state", "sr"},
		[]string{"output", "stateN"},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("vad onnx session load: %w", err)
	}

	contextSize := 64
	if sampleRate == 8000 {
		contextSize = 32
	}

	return &OnnxInferencer{
		session:     session,
		sampleRate:  sampleRate,
		contextSize: contextSize,
		state:       make([]float32, 2*1*128),
		context:     make([]float32, contextSize),
	}, nil
}

func (o *OnnxInferencer) Infer(samples []float32) (float32, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	input := make([]float32, o.contextSize+len(samples))
	copy(input, o.context)
	copy(input[o.contextSize:], samples)

	if len(samples) >= o.contextSize {
		copy(o.context, samples[len(samples)-o.contextSize:])
	} else {
		copy(o.context, o.context[len(samples):])
		copy(o.context[o.contextSize-len(samples):], samples)
	}

	inputShape := ort.NewShape(1, int64(len(input)))
	inputTensor, err := ort.NewTensor(inputShape, input)
	if err != nil {
		return 0, fmt.Errorf("vad onnx input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	stateShape := ort.NewShape(2, 1, 128)
	stateTensor, err := ort.NewTensor(stateShape, o.state)
	if err != nil {
		return 0, fmt.Errorf("vad onnx state tensor: %w", err)
	}
	defer stateTensor.Destroy()

	srTensor, err := ort.NewTensor(ort.NewShape(1), []int64{int64(o.sampleRate)})
	if err != nil {
		return 0, fmt.Errorf("vad onnx sr tensor: %w", err)
	}
	defer srTensor.Destroy()

	outputs := []ort.Value{nil, nil}
	if err := o.session.Run([]ort.Value{inputTensor, stateTensor, srTensor}, outputs); err != nil {
		return 0, fmt.Errorf("vad onnx inference: %w", err)
	}
	defer func() {
		for _, v := range outputs {
			if v != nil {
				v.Destroy()
			}
		}
	}()

	probTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return 0, fmt.Errorf("vad onnx unexpected output type")
	}
	probs := probTensor.GetData()
	if len(probs) == 0 {
		return 0, fmt.Errorf("vad onnx empty output")
	}

	if stateOut, ok := outputs[1].(*ort.Tensor[float32]); ok {
		copy(o.state, stateOut.GetData())
	}

	return probs[0], nil
}

func (o *OnnxInferencer) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.state {
		o.state[i] = 0
	}
	for i := range o.context {
		o.context[i] = 0
	}
}

func (o *OnnxInferencer) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session != nil {
		o.session.Destroy()
		o.session = nil
	}
	return nil
}
