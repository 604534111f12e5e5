package isolate

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gpuscale/autotune/pkg/config"
)

// Wire envelopes for the parent/worker channel. Both directions are a single
// proto-marshaled structpb.Struct: the request carries the entry-point name
// and a configuration snapshot, the response carries the tagged outcome.

func encodeRequest(entry string, cfg *config.Config) ([]byte, error) {
	cs, err := cfg.ToStruct()
	if err != nil {
		return nil, err
	}

	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		"entry":  structpb.NewStringValue(entry),
		"config": structpb.NewStructValue(cs),
	}}

	data, err := proto.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal probe request: %w", err)
	}
	return data, nil
}

func decodeRequest(data []byte) (string, *config.Config, error) {
	var req structpb.Struct
	if err := proto.Unmarshal(data, &req); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal probe request: %w", err)
	}

	entryVal, ok := req.Fields["entry"]
	if !ok {
		return "", nil, fmt.Errorf("probe request is missing the entry name")
	}
	entry := entryVal.GetStringValue()
	if entry == "" {
		return "", nil, fmt.Errorf("probe request entry name is empty")
	}

	cfgVal, ok := req.Fields["config"]
	if !ok {
		return "", nil, fmt.Errorf("probe request is missing the config snapshot")
	}
	cfg, err := config.FromStruct(cfgVal.GetStructValue())
	if err != nil {
		return "", nil, err
	}

	return entry, cfg, nil
}

func encodeOutcome(o Outcome) ([]byte, error) {
	resp := &structpb.Struct{Fields: map[string]*structpb.Value{
		"ok":    structpb.NewBoolValue(o.OK),
		"cause": structpb.NewStringValue(o.Cause),
	}}

	data, err := proto.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal probe outcome: %w", err)
	}
	return data, nil
}

func decodeOutcome(data []byte) (Outcome, error) {
	if len(data) == 0 {
		return Outcome{}, fmt.Errorf("worker produced no outcome")
	}

	var resp structpb.Struct
	if err := proto.Unmarshal(data, &resp); err != nil {
		return Outcome{}, fmt.Errorf("failed to unmarshal probe outcome: %w", err)
	}

	okVal, ok := resp.Fields["ok"]
	if !ok {
		return Outcome{}, fmt.Errorf("probe outcome is missing the ok tag")
	}

	return Outcome{
		OK:    okVal.GetBoolValue(),
		Cause: resp.Fields["cause"].GetStringValue(),
	}, nil
}
