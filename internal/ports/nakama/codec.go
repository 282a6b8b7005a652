package nakama

import (
	"encoding/json"
	"fmt"
	"strings"

	"blackjack/internal/app"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var commandByOpCode = map[int64]app.CommandKind{
	OpStartRound: app.CommandStartRound,
	OpHit:        app.CommandHit,
	OpStand:      app.CommandStand,
	OpDealerPlay: app.CommandDealerPlay,
	OpSettle:     app.CommandSettle,
	OpStatus:     app.CommandStatus,
	OpHint:       app.CommandHint,
	OpHistory:    app.CommandHistory,
}

var opCodeByEvent = map[app.EventKind]int64{
	app.EventRoundStarted: OpRoundStarted,
	app.EventCardDrawn:    OpCardDrawn,
	app.EventDealerPlayed: OpDealerPlayed,
	app.EventRoundSettled: OpRoundSettled,
	app.EventStatus:       OpStatusReport,
	app.EventHint:         OpHintReport,
	app.EventHistory:      OpHistoryList,
	app.EventError:        OpError,
}

// decodeCommand turns a client match message into an app command. The body
// is an optional JSON object: {"amount": 10} or {"amount": "12.5"} for a bet,
// {"limit": 5} for history.
func decodeCommand(opCode int64, data []byte) (app.Command, error) {
	kind, ok := commandByOpCode[opCode]
	if !ok {
		return app.Command{}, fmt.Errorf("unknown op code %d", opCode)
	}
	cmd := app.Command{Kind: kind}

	body, err := decodeBody(data)
	if err != nil {
		return cmd, err
	}
	fields := body.GetFields()

	switch kind {
	case app.CommandStartRound:
		v, ok := fields["amount"]
		if !ok {
			return cmd, fmt.Errorf("start round requires an amount")
		}
		amount, err := decimalValue(v)
		if err != nil {
			return cmd, fmt.Errorf("invalid amount: %w", err)
		}
		cmd.Amount = amount
	case app.CommandHistory:
		if v, ok := fields["limit"]; ok {
			n, ok := v.GetKind().(*structpb.Value_NumberValue)
			if !ok {
				return cmd, fmt.Errorf("limit must be a number")
			}
			cmd.Limit = int(n.NumberValue)
		}
	}
	return cmd, nil
}

func decodeBody(data []byte) (*structpb.Struct, error) {
	body := &structpb.Struct{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return body, nil
	}
	if err := protojson.Unmarshal(data, body); err != nil {
		return nil, fmt.Errorf("invalid message body: %w", err)
	}
	return body, nil
}

// decimalValue accepts a JSON number or a numeric string. Strings keep exact
// precision for fractional chips.
func decimalValue(v *structpb.Value) (decimal.Decimal, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return decimal.NewFromFloat(k.NumberValue), nil
	case *structpb.Value_StringValue:
		return decimal.NewFromString(k.StringValue)
	default:
		return decimal.Zero, fmt.Errorf("expected number or string")
	}
}

// encodeEvent returns the op code and JSON body for an app event.
func encodeEvent(ev app.Event) (int64, []byte, error) {
	opCode, ok := opCodeByEvent[ev.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("no op code for event %q", ev.Kind)
	}
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal event %q: %w", ev.Kind, err)
	}
	return opCode, data, nil
}

// encodeFailure builds an error body for failures that never reached a session.
func encodeFailure(err error) []byte {
	data, mErr := json.Marshal(app.Fail[struct{}](err))
	if mErr != nil {
		return []byte(`{"ok":false}`)
	}
	return data
}

// tableLabel renders the match label used to find a player's table.
func tableLabel(ownerID string) (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		MatchLabelKeyOwner: ownerID,
	})
	if err != nil {
		return "", err
	}
	data, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
