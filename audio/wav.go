// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package audio containerizes raw PCM into WAV for enrichment services that
// require it, grounded in the corpus's own WAV-header
// builders.
package audio

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"strings"
)

const (
	bitsPerSample = 16
	channels      = 1
	defaultRate   = 16000
)

// ExtractSampleRate parses the "rate" parameter off a mime type like
// "audio/pcm;rate=16000", defaulting to 16000 when absent or malformed
// (ported from multivox/transcription.py's extract_sample_rate).
func ExtractSampleRate(mimeType string) int {
	const marker = ";rate="
	idx := strings.Index(mimeType, marker)
	if idx < 0 {
		return defaultRate
	}
	rateStr := mimeType[idx+len(marker):]
	if semi := strings.IndexByte(rateStr, ';'); semi >= 0 {
		rateStr = rateStr[:semi]
	}
	rate, err := strconv.Atoi(rateStr)
	if err != nil {
		return defaultRate
	}
	return rate
}

// WrapPCM wraps raw little-endian 16-bit mono PCM in a RIFF/WAVE container
// at the given sample rate, mirroring multivox/transcription.py's
// pcm_to_wav (mono, 16-bit, rate taken from the mime type).
func WrapPCM(pcm []byte, sampleRate int) []byte {
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := len(pcm)

	buf := new(bytes.Buffer)
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16)) // fmt chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))  // PCM
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(pcm)

	return buf.Bytes()
}
