package solana

import "encoding/binary"

// AccountMeta describes an account referenced by an instruction.
type AccountMeta struct {
	PubKey     PublicKey
	IsSigner   bool
	IsWritable bool
}

// Instruction is a single program invocation with its accounts and data.
type Instruction struct {
	ProgramID PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// System program instruction indices.
const sysTransferIndex = 2

// ComputeBudget program instruction indices.
const computeUnitPriceIndex = 3

// NewTransferInstruction builds a System Program transfer of lamports
// from one account to another. The source must sign.
func NewTransferInstruction(from, to PublicKey, lamports uint64) Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], sysTransferIndex)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	return Instruction{
		ProgramID: SystemProgramID,
		Accounts: []AccountMeta{
			{PubKey: from, IsSigner: true, IsWritable: true},
			{PubKey: to, IsSigner: false, IsWritable: true},
		},
		Data: data,
	}
}

// NewComputeUnitPriceInstruction builds a ComputeBudget SetComputeUnitPrice
// directive. It references no accounts.
func NewComputeUnitPriceInstruction(microLamports uint64) Instruction {
	data := make([]byte, 9)
	data[0] = computeUnitPriceIndex
	binary.LittleEndian.PutUint64(data[1:9], microLamports)

	return Instruction{
		ProgramID: ComputeBudgetProgramID,
		Data:      data,
	}
}
