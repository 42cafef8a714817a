package tape

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Serialized cassette shape. Byte fields (request bodies, chunk data)
// rely on the encoders' lossless text-safe forms: base64 strings in
// JSON, !!binary nodes in YAML. The lookup index is deliberately
// absent; it is rebuilt on every load.

type fingerprintDoc struct {
	Value string `json:"value" yaml:"value"`
}

type interactionDoc struct {
	Request        InteractionRequest `json:"request" yaml:"request"`
	Fingerprint    fingerprintDoc     `json:"fingerprint" yaml:"fingerprint"`
	ResponseChunks []ResponseChunk    `json:"response_chunks" yaml:"response_chunks"`
	Metadata       Pairs              `json:"metadata" yaml:"metadata"`
}

type cassetteDoc struct {
	Interactions []interactionDoc `json:"interactions" yaml:"interactions"`
}

func (i Interaction) toDoc() interactionDoc {
	return interactionDoc{
		Request:        i.Request,
		Fingerprint:    fingerprintDoc{Value: i.Fingerprint.Value()},
		ResponseChunks: i.ResponseChunks,
		Metadata:       i.Metadata,
	}
}

// fromDoc reconstructs and re-validates an interaction.
func fromDoc(doc interactionDoc) (Interaction, error) {
	fingerprint, err := ParseFingerprint(doc.Fingerprint.Value)
	if err != nil {
		return Interaction{}, err
	}
	return NewInteraction(doc.Request, fingerprint, doc.ResponseChunks, doc.Metadata)
}

// MarshalJSON implements json.Marshaler.
func (i Interaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.toDoc())
}

// UnmarshalJSON implements json.Unmarshaler. The decoded interaction
// is re-validated; structural violations fail the unmarshal.
func (i *Interaction) UnmarshalJSON(data []byte) error {
	var doc interactionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	interaction, err := fromDoc(doc)
	if err != nil {
		return err
	}
	*i = interaction
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c *Cassette) MarshalJSON() ([]byte, error) {
	docs := make([]interactionDoc, len(c.interactions))
	for i, interaction := range c.interactions {
		docs[i] = interaction.toDoc()
	}
	return json.Marshal(cassetteDoc{Interactions: docs})
}

// UnmarshalJSON implements json.Unmarshaler. Every interaction is
// re-validated and the fingerprint index is rebuilt from scratch.
func (c *Cassette) UnmarshalJSON(data []byte) error {
	var doc cassetteDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	return c.fromDoc(doc)
}

// MarshalYAML implements yaml.Marshaler.
func (c *Cassette) MarshalYAML() (any, error) {
	docs := make([]interactionDoc, len(c.interactions))
	for i, interaction := range c.interactions {
		docs[i] = interaction.toDoc()
	}
	return cassetteDoc{Interactions: docs}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler with the same
// re-validation contract as UnmarshalJSON.
func (c *Cassette) UnmarshalYAML(node *yaml.Node) error {
	var doc cassetteDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}
	return c.fromDoc(doc)
}

func (c *Cassette) fromDoc(doc cassetteDoc) error {
	interactions := make([]Interaction, len(doc.Interactions))
	for i, d := range doc.Interactions {
		interaction, err := fromDoc(d)
		if err != nil {
			return fmt.Errorf("interaction %d: %w", i, err)
		}
		interactions[i] = interaction
	}
	c.interactions = interactions
	c.index = buildIndex(interactions)
	return nil
}
