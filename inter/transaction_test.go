package inter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-landchain/utils/cser"
)

func fixedTx(id string, kind TxKind, user, land string, amount int64, out string) Transaction {
	return Transaction{
		ID:     id,
		Kind:   kind,
		Time:   1_700_000_000_000_000_000,
		Input:  TxInput{UserID: user, LandID: land, Amount: amount},
		Output: TxOutput{UserID: out},
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
		kind TxKind
		in   TxInput
		out  string
	}{
		{"receive", NewReceiveCoins("alice", 200), ReceiveCoins, TxInput{UserID: "alice", Amount: 200}, "alice"},
		{"declare", NewLandDeclare("alice", "A-1"), LandDeclare, TxInput{UserID: "alice", LandID: "A-1"}, "alice"},
		{"transfer", NewLandTransfer("alice", "A-1", "bob"), LandTransfer, TxInput{UserID: "alice", LandID: "A-1"}, "bob"},
		{"stake", NewStakeIncrease("bob", 20), StakeIncrease, TxInput{UserID: "bob", Amount: 20}, "bob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.kind, tt.tx.Kind)
			require.Equal(t, tt.in, tt.tx.Input)
			require.Equal(t, tt.out, tt.tx.Output.UserID)
			require.NotEmpty(t, tt.tx.ID)
			require.NotZero(t, tt.tx.Time)
			require.NoError(t, tt.tx.Validate())
		})
	}

	t.Run("ids are unique", func(t *testing.T) {
		a, b := NewReceiveCoins("alice", 1), NewReceiveCoins("alice", 1)
		require.NotEqual(t, a.ID, b.ID)
		require.NotEqual(t, a.Hash(), b.Hash())
	})
}

func TestValidate(t *testing.T) {
	ok := fixedTx("id", LandTransfer, "alice", "A-1", 0, "bob")
	require.NoError(t, ok.Validate())

	noID := ok
	noID.ID = ""
	require.ErrorIs(t, noID.Validate(), ErrMissingID)

	badKind := ok
	badKind.Kind = 0
	require.ErrorIs(t, badKind.Validate(), ErrUnknownTxKind)

	noLand := ok
	noLand.Input.LandID = ""
	require.ErrorIs(t, noLand.Validate(), ErrMissingLand)

	noBuyer := ok
	noBuyer.Output.UserID = ""
	require.ErrorIs(t, noBuyer.Validate(), ErrMissingUser)

	badLand := ok
	badLand.Input.LandID = "A-\xff"
	require.ErrorIs(t, badLand.Validate(), ErrInvalidText)

	// anything Validate accepts must survive the decoder
	raw, err := ok.MarshalBinary()
	require.NoError(t, err)
	var back Transaction
	require.NoError(t, back.UnmarshalBinary(raw))

	raw, err = badLand.MarshalBinary()
	require.NoError(t, err)
	require.ErrorIs(t, back.UnmarshalBinary(raw), cser.ErrNonCanonicalEncoding)
}

func TestTransactionString(t *testing.T) {
	assert.Equal(t, "alice staked 20 coins", NewStakeIncrease("alice", 20).String())
	assert.Equal(t, "alice sold land A-1 to bob", NewLandTransfer("alice", "A-1", "bob").String())
	assert.Equal(t, "carol received 5 coins", NewReceiveCoins("carol", 5).String())
	assert.Equal(t, "bob declared land B", NewLandDeclare("bob", "B").String())
}

func TestTransactionSerialization(t *testing.T) {
	tx := fixedTx("9f1c", StakeIncrease, "bob", "", -5, "bob")

	t.Run("layout", func(t *testing.T) {
		raw, err := tx.MarshalBinary()
		require.NoError(t, err)
		exp := []byte{
			TxEncodingVersion,
			0, 0, 0, 4, '9', 'f', '1', 'c',
			uint8(StakeIncrease),
			0x17, 0x97, 0x9c, 0xfe, 0x36, 0x2a, 0x00, 0x00,
			0, 0, 0, 3, 'b', 'o', 'b',
			0, 0, 0, 0,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfb,
			0, 0, 0, 3, 'b', 'o', 'b',
		}
		require.Equal(t, exp, raw)
	})

	t.Run("decode", func(t *testing.T) {
		raw, err := tx.MarshalBinary()
		require.NoError(t, err)
		var got Transaction
		require.NoError(t, got.UnmarshalBinary(raw))
		require.Equal(t, tx, got)
	})

	t.Run("structurally equal txs encode identically", func(t *testing.T) {
		a := fixedTx("x", LandDeclare, "alice", "A", 0, "alice")
		b := fixedTx("x", LandDeclare, "alice", "A", 0, "alice")
		require.Equal(t, a.Hash(), b.Hash())

		b.Input.LandID = "B"
		require.NotEqual(t, a.Hash(), b.Hash())
	})

	t.Run("unknown version", func(t *testing.T) {
		raw, err := tx.MarshalBinary()
		require.NoError(t, err)
		raw[0] = 9
		var got Transaction
		require.ErrorIs(t, got.UnmarshalBinary(raw), ErrUnknownVersion)
	})

	t.Run("unknown kind", func(t *testing.T) {
		bad := tx
		bad.Kind = 42
		_, err := bad.MarshalBinary()
		require.ErrorIs(t, err, ErrUnknownTxKind)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		raw, err := tx.MarshalBinary()
		require.NoError(t, err)
		var got Transaction
		require.Equal(t, cser.ErrNonCanonicalEncoding, got.UnmarshalBinary(append(raw, 0)))
	})
}
