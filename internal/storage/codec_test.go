package storage

import (
	"errors"
	"testing"

	"pfcrack/internal/model"
)

func TestPopulationCodecRoundTrip(t *testing.T) {
	population := model.Population{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "run-9",
		Keys:            []string{"PLAYFIREXMBCDGHKNOQSTUVWZ"},
		Generation:      12,
	}

	payload, err := EncodePopulation(population)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodePopulation(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != population.ID || decoded.Generation != 12 || len(decoded.Keys) != 1 {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestDecodeRejectsVersionMismatch(t *testing.T) {
	population := model.Population{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion + 1, CodecVersion: CurrentCodecVersion},
		ID:              "run-9",
	}
	payload, err := EncodePopulation(population)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodePopulation(payload); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestHistoryAndTopKeyCodecs(t *testing.T) {
	history := []int64{1, 2, 3}
	payload, err := EncodeScoreHistory(history)
	if err != nil {
		t.Fatalf("encode history: %v", err)
	}
	decoded, err := DecodeScoreHistory(payload)
	if err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(decoded) != 3 || decoded[2] != 3 {
		t.Fatalf("history mismatch: %v", decoded)
	}

	top := []model.TopKeyRecord{{Rank: 1, Key: "K", Score: 5}}
	topPayload, err := EncodeTopKeys(top)
	if err != nil {
		t.Fatalf("encode top: %v", err)
	}
	decodedTop, err := DecodeTopKeys(topPayload)
	if err != nil {
		t.Fatalf("decode top: %v", err)
	}
	if len(decodedTop) != 1 || decodedTop[0].Key != "K" {
		t.Fatalf("top keys mismatch: %v", decodedTop)
	}
}
