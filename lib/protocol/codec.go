// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedFrame is returned when a frame is not a JSON object with a
// string "type" field, or when its body does not match its type.
var ErrMalformedFrame = errors.New("malformed frame")

// FrameEncoding selects how inbound frames are unwrapped before the
// message object is decoded.
type FrameEncoding string

const (
	// FrameAuto decodes a frame that is a JSON string a second time,
	// and decodes a frame that is an object directly.
	FrameAuto FrameEncoding = "auto"

	// FrameSingle requires the frame to be the message object.
	FrameSingle FrameEncoding = "single"

	// FrameDouble requires the frame to be a JSON string whose
	// contents are the message object.
	FrameDouble FrameEncoding = "double"
)

// ParseFrameEncoding validates a frame encoding name. The empty string
// selects [FrameAuto].
func ParseFrameEncoding(name string) (FrameEncoding, error) {
	switch FrameEncoding(name) {
	case "", FrameAuto:
		return FrameAuto, nil
	case FrameSingle:
		return FrameSingle, nil
	case FrameDouble:
		return FrameDouble, nil
	default:
		return "", fmt.Errorf("unknown frame encoding %q (want auto, single, or double)", name)
	}
}

// Codec converts messages to and from wire frames. The zero value
// decodes with [FrameAuto].
type Codec struct {
	Encoding FrameEncoding
}

// envelope reads only the discriminator of a frame.
type envelope struct {
	Type *Kind `json:"type"`
}

// EncodeRequest serializes a request as a single JSON object with its
// "type" field set.
func (codec Codec) EncodeRequest(request Request) ([]byte, error) {
	if request == nil {
		return nil, fmt.Errorf("encoding request: nil request")
	}
	return encodeTagged(request.Kind(), request)
}

// EncodeResponse serializes a response the way the server does,
// honoring the codec's frame encoding: [FrameDouble] wraps the object
// in a JSON string. Used by test servers and tooling.
func (codec Codec) EncodeResponse(response Response) ([]byte, error) {
	if response == nil {
		return nil, fmt.Errorf("encoding response: nil response")
	}
	var (
		frame []byte
		err   error
	)
	if unknown, ok := response.(Unknown); ok {
		frame = append([]byte(nil), unknown.Raw...)
	} else {
		frame, err = encodeTagged(response.Kind(), response)
		if err != nil {
			return nil, err
		}
	}
	if codec.Encoding == FrameDouble {
		return json.Marshal(string(frame))
	}
	return frame, nil
}

// DecodeResponse parses an inbound frame. Unknown discriminators yield
// an [Unknown] response and a nil error; the caller decides to log and
// ignore it.
func (codec Codec) DecodeResponse(frame []byte) (Response, error) {
	body, kind, err := codec.unwrap(frame)
	if err != nil {
		return nil, err
	}
	decode, ok := responseDecoders[kind]
	if !ok {
		return Unknown{Type: kind, Raw: body}, nil
	}
	response, err := decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrMalformedFrame, kind, err)
	}
	return response, nil
}

// DecodeRequest parses a frame sent by a client. Used by test servers
// and tooling. Unlike responses, an unrecognized request kind is an
// error.
func (codec Codec) DecodeRequest(frame []byte) (Request, error) {
	body, kind, err := codec.unwrap(frame)
	if err != nil {
		return nil, err
	}
	decode, ok := requestDecoders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown request type %q", ErrMalformedFrame, kind)
	}
	request, err := decode(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrMalformedFrame, kind, err)
	}
	return request, nil
}

// unwrap applies the frame encoding and reads the discriminator.
func (codec Codec) unwrap(frame []byte) (json.RawMessage, Kind, error) {
	body := bytes.TrimSpace(frame)
	if len(body) == 0 {
		return nil, "", fmt.Errorf("%w: empty frame", ErrMalformedFrame)
	}

	isString := body[0] == '"'
	switch codec.Encoding {
	case FrameSingle:
		if isString {
			return nil, "", fmt.Errorf("%w: string frame with single encoding", ErrMalformedFrame)
		}
	case FrameDouble:
		if !isString {
			return nil, "", fmt.Errorf("%w: object frame with double encoding", ErrMalformedFrame)
		}
	}
	if isString {
		var inner string
		if err := json.Unmarshal(body, &inner); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		body = bytes.TrimSpace([]byte(inner))
	}

	var header envelope
	if err := json.Unmarshal(body, &header); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if header.Type == nil || *header.Type == "" {
		return nil, "", fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}
	return json.RawMessage(body), *header.Type, nil
}

// encodeTagged marshals message and sets its "type" field to kind.
func encodeTagged(kind Kind, message any) ([]byte, error) {
	payload, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", kind, err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", kind, err)
	}
	tag, err := json.Marshal(kind)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", kind, err)
	}
	fields["type"] = tag
	return json.Marshal(fields)
}

// decodeAs unmarshals a frame body into a T and returns it as the
// message interface I.
func decodeAs[T any, I any](body []byte) (I, error) {
	var message T
	if err := json.Unmarshal(body, &message); err != nil {
		var zero I
		return zero, err
	}
	return any(message).(I), nil
}
