package nakama

const (
	// RpcCreateTable is the Nakama RPC id clients call to open (or rejoin) their table.
	RpcCreateTable = "blackjack_create_table"

	// RpcHistory returns the caller's recently settled rounds.
	RpcHistory = "blackjack_history"

	// RpcVerifyReceipt checks a settlement receipt issued to the caller.
	RpcVerifyReceipt = "blackjack_verify_receipt"

	// MatchNameBlackjack is the authoritative match handler name registered with Nakama.
	MatchNameBlackjack = "blackjack_table"

	// MatchLabelKeyOwner is the label field holding the table owner's user id.
	MatchLabelKeyOwner = "owner"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartRound int64 = 1
	OpHit        int64 = 2
	OpStand      int64 = 3
	OpDealerPlay int64 = 4
	OpSettle     int64 = 5
	OpStatus     int64 = 6
	OpHint       int64 = 7
	OpHistory    int64 = 8

	// Server -> Client events, sent to the table owner only
	OpRoundStarted int64 = 101
	OpCardDrawn    int64 = 102
	OpDealerPlayed int64 = 103
	OpRoundSettled int64 = 104
	OpStatusReport int64 = 105
	OpHintReport   int64 = 106
	OpHistoryList  int64 = 107
	OpError        int64 = 199
)

// gRPC status codes used for RPC errors.
const (
	codeInvalidArgument    = 3
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnauthenticated    = 16
)
