package entity

type StoreDriver string

const (
	StoreDriverMemory StoreDriver = "memory"
	StoreDriverSQLite StoreDriver = "sqlite"
)
