package evm

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	geth_abi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/smartcontractkit/timelock/sdk/errors"
	"github.com/smartcontractkit/timelock/types"
)

const (
	sigExecute      = "execute(address target, uint256 value, bytes data)"
	sigExecuteBatch = "executeBatch(address[] targets, uint256[] values, bytes[] payloads)"
	sigRBACBatch    = "executeBatch((address target, uint256 value, bytes data)[] calls, bytes32 predecessor, bytes32 salt)"
	sigTransfer     = "transfer(address to, uint256 amount)"
)

var (
	timelockAddr  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	multisigAddr  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	tokenAddr     = common.HexToAddress("0x3000000000000000000000000000000000000003")
	recipientAddr = common.HexToAddress("0x4000000000000000000000000000000000000004")
)

func mustMethod(t *testing.T, sig string) geth_abi.Method {
	t.Helper()

	m, err := ParseSignature(sig)
	require.NoError(t, err)

	return m
}

func packCall(t *testing.T, sig string, args ...any) []byte {
	t.Helper()

	m := mustMethod(t, sig)
	packed, err := m.Inputs.Pack(args...)
	require.NoError(t, err)

	return append(append([]byte{}, m.ID...), packed...)
}

func sigEntry(t *testing.T, addr common.Address, source types.InterfaceSource, sigs ...string) InterfaceEntry {
	t.Helper()

	entry, err := NewEntryFromSignatures(addr, sigs, source, "")
	require.NoError(t, err)

	return entry
}

// chainFixture builds execute -> executeBatch -> transfer.
func chainFixture(t *testing.T) (*Registry, []byte, []byte, []byte) {
	t.Helper()

	transfer := packCall(t, sigTransfer, recipientAddr, big.NewInt(1_500_000))
	batch := packCall(t, sigExecuteBatch,
		[]common.Address{tokenAddr}, []*big.Int{big.NewInt(0)}, [][]byte{transfer})
	root := packCall(t, sigExecute, multisigAddr, big.NewInt(0), batch)

	registry := NewRegistry(
		sigEntry(t, timelockAddr, types.InterfaceSourceManual, sigExecute),
		sigEntry(t, multisigAddr, types.InterfaceSourceFetched, sigExecuteBatch),
		sigEntry(t, tokenAddr, types.InterfaceSourceHeuristic, sigTransfer),
	)

	return registry, root, batch, transfer
}

// summarize flattens a tree into "path status function" lines.
func summarize(c *DecodedCall) []string {
	out := []string{c.Path + " " + string(c.Status) + " " + c.FunctionName}
	for _, child := range c.Children {
		out = append(out, summarize(child)...)
	}

	return out
}

func TestDecoder_NestedChain(t *testing.T) {
	t.Parallel()

	registry, root, batch, transfer := chainFixture(t)

	tests := []struct {
		name      string
		maxDepth  int
		want      []string
		wantDepth int
		wantWarns []types.WarningKind
	}{
		{
			name:     "fully decoded",
			maxDepth: DefaultMaxDepth,
			want: []string{
				"0 decoded execute",
				"0.0 decoded executeBatch",
				"0.0.0 decoded transfer",
			},
			wantDepth: 3,
		},
		{
			name:     "stops below root",
			maxDepth: 1,
			want: []string{
				"0 decoded execute",
				"0.0 depth_exceeded unknown",
			},
			wantDepth: 1,
			wantWarns: []types.WarningKind{types.WarningDepthExceeded},
		},
		{
			name:     "stops above leaf",
			maxDepth: 2,
			want: []string{
				"0 decoded execute",
				"0.0 decoded executeBatch",
				"0.0.0 depth_exceeded unknown",
			},
			wantDepth: 2,
			wantWarns: []types.WarningKind{types.WarningDepthExceeded},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewDecoder().Decode(timelockAddr, root, registry, WithMaxDepth(tt.maxDepth))
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, summarize(got)); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantDepth, got.Depth())

			var kinds []types.WarningKind
			for _, w := range got.Warnings() {
				kinds = append(kinds, w.Kind)
			}
			assert.Equal(t, tt.wantWarns, kinds)
		})
	}

	t.Run("placeholder keeps raw call", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(timelockAddr, root, registry, WithMaxDepth(1))
		require.NoError(t, err)
		require.Len(t, got.Children, 1)

		child := got.Children[0]
		assert.Equal(t, multisigAddr, child.Target)
		assert.Equal(t, batch, []byte(child.Calldata))
		assert.Equal(t, types.ConfidenceNone, child.Confidence)
	})

	t.Run("leaf values and confidence", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(timelockAddr, root, registry)
		require.NoError(t, err)

		assert.Equal(t, types.ConfidenceHigh, got.Confidence)
		assert.Equal(t, types.InterfaceSourceManual, got.Source)

		leaves := got.Leaves()
		require.Len(t, leaves, 1)
		leaf := leaves[0]
		assert.Equal(t, "0.0.0", leaf.Path)
		assert.Equal(t, tokenAddr, leaf.Target)
		assert.Equal(t, "transfer(address,uint256)", leaf.Signature)
		assert.Equal(t, types.InterfaceSourceHeuristic, leaf.Source)
		assert.Equal(t, types.ConfidenceLow, leaf.Confidence, "confidence is never inherited")
		assert.Equal(t, []any{recipientAddr, big.NewInt(1_500_000)}, leaf.Args())
		assert.Equal(t, transfer, []byte(leaf.Calldata))
	})
}

func TestDecoder_RoundTrip(t *testing.T) {
	t.Parallel()

	registry, root, _, transfer := chainFixture(t)

	got, err := NewDecoder().Decode(timelockAddr, root, registry)
	require.NoError(t, err)

	leaf := got.Leaves()[0]
	m := mustMethod(t, sigTransfer)
	repacked, err := m.Inputs.Pack(leaf.Args()...)
	require.NoError(t, err)
	assert.Equal(t, transfer[4:], repacked)
}

func TestDecoder_RootTooShort(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, {}, {0x01, 0x02, 0x03}} {
		_, err := NewDecoder().Decode(timelockAddr, data, NewRegistry())
		require.Error(t, err)

		var tooShort *sdkerrors.CalldataTooShortError
		require.True(t, errors.As(err, &tooShort))
		assert.Equal(t, len(data), tooShort.Length)
	}
}

func TestDecoder_Leaves(t *testing.T) {
	t.Parallel()

	transfer := packCall(t, sigTransfer, recipientAddr, big.NewInt(1))
	approve := packCall(t, "approve(address,uint256)", recipientAddr, big.NewInt(1))

	tests := []struct {
		name           string
		registry       *Registry
		data           []byte
		wantStatus     DecodeStatus
		wantFunction   string
		wantSource     types.InterfaceSource
		wantConfidence types.Confidence
		wantWarning    types.WarningKind
	}{
		{
			name:           "unknown interface",
			registry:       NewRegistry(),
			data:           transfer,
			wantStatus:     StatusUnknownInterface,
			wantFunction:   UnknownFunctionName,
			wantSource:     types.InterfaceSourceNone,
			wantConfidence: types.ConfidenceNone,
			wantWarning:    types.WarningUnknownInterface,
		},
		{
			name:           "unknown selector",
			registry:       NewRegistry(sigEntry(t, tokenAddr, types.InterfaceSourceFetched, sigTransfer)),
			data:           approve,
			wantStatus:     StatusUnknownSelector,
			wantFunction:   UnknownFunctionName,
			wantSource:     types.InterfaceSourceFetched,
			wantConfidence: types.ConfidenceHigh,
			wantWarning:    types.WarningUnknownSelector,
		},
		{
			name:           "truncated arguments",
			registry:       NewRegistry(sigEntry(t, tokenAddr, types.InterfaceSourceManual, sigTransfer)),
			data:           transfer[:20],
			wantStatus:     StatusUndecodable,
			wantFunction:   UnknownFunctionName,
			wantSource:     types.InterfaceSourceManual,
			wantConfidence: types.ConfidenceHigh,
			wantWarning:    types.WarningUndecodableCalldata,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NewDecoder().Decode(tokenAddr, tt.data, tt.registry)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantFunction, got.FunctionName)
			assert.Equal(t, tt.wantSource, got.Source)
			assert.Equal(t, tt.wantConfidence, got.Confidence)
			assert.Empty(t, got.Children)
			assert.Equal(t, tt.data[:4], []byte(got.Selector))
			require.Len(t, got.Warnings(), 1)
			assert.Equal(t, tt.wantWarning, got.Warnings()[0].Kind)
			assert.Equal(t, "0", got.Warnings()[0].Path)
		})
	}
}

func TestDecoder_InnerPayloads(t *testing.T) {
	t.Parallel()

	oneEther := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	batch := packCall(t, sigExecuteBatch,
		[]common.Address{recipientAddr, tokenAddr},
		[]*big.Int{oneEther, big.NewInt(0)},
		[][]byte{{}, {0xa9, 0x05}},
	)
	registry := NewRegistry(sigEntry(t, multisigAddr, types.InterfaceSourceManual, sigExecuteBatch))

	got, err := NewDecoder().Decode(multisigAddr, batch, registry)
	require.NoError(t, err)
	require.Len(t, got.Children, 2)

	native := got.Children[0]
	assert.Equal(t, StatusNativeTransfer, native.Status)
	assert.Equal(t, recipientAddr, native.Target)
	assert.Equal(t, 0, oneEther.Cmp(native.Value))
	assert.Empty(t, native.Issues)

	short := got.Children[1]
	assert.Equal(t, StatusUndecodable, short.Status)
	assert.Equal(t, "0.1", short.Path)

	warnings := got.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, types.WarningUndecodableCalldata, warnings[0].Kind)
}

func TestDecoder_MalformedBatchArity(t *testing.T) {
	t.Parallel()

	transfer := packCall(t, sigTransfer, recipientAddr, big.NewInt(1))
	batch := packCall(t, sigExecuteBatch,
		[]common.Address{tokenAddr, tokenAddr},
		[]*big.Int{big.NewInt(0)},
		[][]byte{transfer, transfer},
	)
	registry := NewRegistry(
		sigEntry(t, multisigAddr, types.InterfaceSourceManual, sigExecuteBatch),
		sigEntry(t, tokenAddr, types.InterfaceSourceManual, sigTransfer),
	)

	got, err := NewDecoder().Decode(multisigAddr, batch, registry)
	require.NoError(t, err)

	assert.Equal(t, StatusMalformedBatchArity, got.Status)
	assert.Equal(t, "executeBatch", got.FunctionName)
	assert.Len(t, got.Parameters, 3)
	assert.Empty(t, got.Children)
	assert.Equal(t, "malformed batch arity: 2 targets, 1 values, 2 payloads", got.Reason)
	assert.True(t, got.Warnings().Has(types.WarningMalformedBatchArity))
}

func TestDecoder_TupleArrayWrapper(t *testing.T) {
	t.Parallel()

	type call struct {
		Target common.Address
		Value  *big.Int
		Data   []byte
	}
	transfer := packCall(t, sigTransfer, recipientAddr, big.NewInt(7))
	batch := packCall(t, sigRBACBatch,
		[]call{
			{Target: tokenAddr, Value: big.NewInt(0), Data: transfer},
			{Target: recipientAddr, Value: big.NewInt(5), Data: []byte{}},
		},
		[32]byte{}, [32]byte{0x01},
	)
	registry := NewRegistry(
		sigEntry(t, timelockAddr, types.InterfaceSourceManual, sigRBACBatch),
		sigEntry(t, tokenAddr, types.InterfaceSourceManual, sigTransfer),
	)

	got, err := NewDecoder().Decode(timelockAddr, batch, registry)
	require.NoError(t, err)

	want := []string{
		"0 decoded executeBatch",
		"0.0 decoded transfer",
		"0.1 native_transfer ",
	}
	if diff := cmp.Diff(want, summarize(got)); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, big.NewInt(5).Cmp(got.Children[1].Value))

	calls, ok := got.Param("calls")
	require.True(t, ok)
	elems, ok := calls.Value.([]any)
	require.True(t, ok)
	require.Len(t, elems, 2)
	first, ok := elems[0].([]Parameter)
	require.True(t, ok)
	assert.Equal(t, "target", first[0].Name)
	assert.Equal(t, tokenAddr, first[0].Value)

	salt, ok := got.Param("salt")
	require.True(t, ok)
	assert.Equal(t, append([]byte{0x01}, make([]byte, 31)...), salt.Value)
}

func TestDecoder_ParallelWithoutValues(t *testing.T) {
	t.Parallel()

	const sig = "executeBatch(address[] dest, bytes[] data)"
	transfer := packCall(t, sigTransfer, recipientAddr, big.NewInt(7))
	batch := packCall(t, sig, []common.Address{tokenAddr}, [][]byte{transfer})
	registry := NewRegistry(
		sigEntry(t, multisigAddr, types.InterfaceSourceManual, sig),
		sigEntry(t, tokenAddr, types.InterfaceSourceManual, sigTransfer),
	)

	got, err := NewDecoder().Decode(multisigAddr, batch, registry)
	require.NoError(t, err)
	require.Len(t, got.Children, 1)
	assert.Equal(t, "transfer", got.Children[0].FunctionName)
	assert.Equal(t, 0, got.Children[0].Value.Sign())
}

func TestDecoder_WrapperRecognition(t *testing.T) {
	t.Parallel()

	registry, root, _, _ := chainFixture(t)

	got, err := NewDecoder(WithWrapperNames("relay")).Decode(timelockAddr, root, registry)
	require.NoError(t, err)
	assert.Equal(t, StatusDecoded, got.Status)
	assert.Empty(t, got.Children, "execute is not a wrapper when the names are replaced")

	const oddSig = "execute(uint256 proposalId)"
	odd := packCall(t, oddSig, big.NewInt(42))
	got, err = NewDecoder().Decode(timelockAddr, odd,
		NewRegistry(sigEntry(t, timelockAddr, types.InterfaceSourceManual, oddSig)))
	require.NoError(t, err)
	assert.Equal(t, StatusDecoded, got.Status)
	assert.Empty(t, got.Children, "wrapper names need a call shaped argument list")
}

func TestDecoder_AmbiguousSelector(t *testing.T) {
	t.Parallel()

	burn := mustMethod(t, "burn(uint256 amount)")
	shred := mustMethod(t, "shred(bytes32 id)")
	pair := mustMethod(t, "pair(uint256 a, uint256 b)")
	shred.ID = burn.ID
	pair.ID = burn.ID

	registry := NewRegistry(InterfaceEntry{
		Address:   tokenAddr,
		Functions: []geth_abi.Method{burn, pair, shred},
		Source:    types.InterfaceSourceHeuristic,
	})
	data := packCall(t, "burn(uint256)", big.NewInt(1))

	t.Run("flagged without intended signature", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(tokenAddr, data, registry)
		require.NoError(t, err)

		assert.Equal(t, "burn", got.FunctionName)
		assert.True(t, got.Ambiguous)
		assert.Equal(t, []string{"shred(bytes32)"}, got.Alternatives)
		assert.True(t, got.Warnings().Has(types.WarningAmbiguousSelector))
	})

	t.Run("resolved by intended signature", func(t *testing.T) {
		t.Parallel()

		got, err := NewDecoder().Decode(tokenAddr, data, registry, WithSignature("shred(bytes32 id)"))
		require.NoError(t, err)

		assert.Equal(t, "shred", got.FunctionName)
		assert.False(t, got.Ambiguous)
		assert.Empty(t, got.Warnings())
	})
}

func TestDecoder_TokenAnnotations(t *testing.T) {
	t.Parallel()

	registry, root, _, _ := chainFixture(t)

	got, err := NewDecoder().Decode(timelockAddr, root, registry,
		WithTokenMetadata(map[common.Address]TokenMetadata{tokenAddr: {Symbol: "USDC", Decimals: 6}}),
		WithValue(big.NewInt(3)),
	)
	require.NoError(t, err)
	assert.Equal(t, 0, big.NewInt(3).Cmp(got.Value))

	leaf := got.Leaves()[0]
	amount, ok := leaf.Param("amount")
	require.True(t, ok)
	assert.Equal(t, "1.5 USDC", amount.Annotation)
	assert.Equal(t, big.NewInt(1_500_000), amount.Value)

	to, ok := leaf.Param("to")
	require.True(t, ok)
	assert.Empty(t, to.Annotation)
}

func TestDecoder_MaxDepthClamp(t *testing.T) {
	t.Parallel()

	d := NewDecoder()
	assert.Equal(t, DefaultMaxDepth, d.config(nil).maxDepth)
	assert.Equal(t, 1, d.config([]DecodeOption{WithMaxDepth(0)}).maxDepth)
	assert.Equal(t, MaxDepthLimit, d.config([]DecodeOption{WithMaxDepth(1000)}).maxDepth)
	assert.Equal(t, 3, NewDecoder(WithMaxDepth(3)).config(nil).maxDepth)
}

func TestParameter_MarshalJSON(t *testing.T) {
	t.Parallel()

	registry, root, _, _ := chainFixture(t)
	got, err := NewDecoder().Decode(timelockAddr, root, registry)
	require.NoError(t, err)

	b, err := json.Marshal(got.Leaves()[0].Parameters)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"name":"to","type":"address","value":"0x4000000000000000000000000000000000000004"},
		{"name":"amount","type":"uint256","value":"1500000"}
	]`, string(b))

	name, args, err := got.Leaves()[0].String()
	require.NoError(t, err)
	assert.Equal(t, "transfer", name)
	assert.Contains(t, args, `"1500000"`)
}

func TestDecoder_WithPath(t *testing.T) {
	t.Parallel()

	registry, root, _, _ := chainFixture(t)

	got, err := NewDecoder().Decode(timelockAddr, root, registry, WithPath("3"), WithMaxDepth(1))
	require.NoError(t, err)
	assert.Equal(t, "3", got.Path)
	require.Len(t, got.Warnings(), 1)
	assert.Equal(t, "3.0", got.Warnings()[0].Path)
}

func TestNativeTransfer(t *testing.T) {
	t.Parallel()

	got := NativeTransfer(recipientAddr, big.NewInt(10), WithPath("1"))
	assert.Equal(t, StatusNativeTransfer, got.Status)
	assert.Equal(t, "1", got.Path)
	assert.Equal(t, 0, big.NewInt(10).Cmp(got.Value))
	assert.Empty(t, got.Warnings())
	assert.Equal(t, 1, got.Depth())
}
