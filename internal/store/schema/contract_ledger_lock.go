package schema

import "time"

// ContractLedgerLock represents the contract_ledger_locks table.
// Every ledger write for a contract locks its row with SELECT ... FOR UPDATE and bumps Version.
type ContractLedgerLock struct {
	ContractID uint64    `gorm:"column:contract_id;primaryKey;autoIncrement:false"`
	Version    int64     `gorm:"column:version;not null;default:0"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (ContractLedgerLock) TableName() string {
	return "contract_ledger_locks"
}
