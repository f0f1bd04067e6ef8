package ethrpc

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultENSRegistry is the ENS registry deployed on mainnet and most testnets.
const DefaultENSRegistry = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

const reverseSuffix = "addr.reverse"

var (
	resolverSelector = selector("resolver(bytes32)")
	addrSelector     = selector("addr(bytes32)")
	nameSelector     = selector("name(bytes32)")

	stringArgs = mustStringArguments()
)

func selector(signature string) []byte {
	return crypto.Keccak256([]byte(signature))[:4]
}

func mustStringArguments() abi.Arguments {
	t, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: t}}
}

// NameHash computes the EIP-137 node for a name. Labels are lowercased;
// full UTS-46 normalisation is not applied.
func NameHash(name string) common.Hash {
	var node common.Hash
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = common.BytesToHash(crypto.Keccak256(node.Bytes(), labelHash))
	}
	return node
}

// ReverseNode is the node holding the primary name of addr.
func ReverseNode(addr common.Address) common.Hash {
	return NameHash(hex.EncodeToString(addr.Bytes()) + "." + reverseSuffix)
}

func nodeCall(sel []byte, node common.Hash) []byte {
	data := make([]byte, 0, len(sel)+common.HashLength)
	data = append(data, sel...)
	return append(data, node.Bytes()...)
}

// decodeAddress reads an ABI encoded address return value.
func decodeAddress(ret []byte) (common.Address, error) {
	if len(ret) < common.HashLength {
		return common.Address{}, fmt.Errorf("short address return: %d bytes", len(ret))
	}
	return common.BytesToAddress(ret[:common.HashLength]), nil
}

func decodeString(ret []byte) (string, error) {
	if len(ret) == 0 {
		return "", nil
	}
	values, err := stringArgs.Unpack(ret)
	if err != nil {
		return "", fmt.Errorf("unpack string: %w", err)
	}
	s, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected return type %T", values[0])
	}
	return s, nil
}
