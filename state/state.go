// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/btree"

	"github.com/luxfi/cache"
	"github.com/luxfi/cache/lru"
	"github.com/luxfi/cache/metercacher"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/database/versiondb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	safemath "github.com/luxfi/math"

	"github.com/luxfi/assetvm/components/asset"
)

const (
	defaultTreeDegree = 2

	assetCacheSize    = 2048
	symbolCacheSize   = 2048
	dynamicCacheSize  = 2048
	bitassetCacheSize = 1024
	accountCacheSize  = 4096
	balanceCacheSize  = 8192
)

var (
	_ State = (*state)(nil)

	AssetPrefix      = []byte("asset")
	SymbolPrefix     = []byte("symbol")
	DynamicPrefix    = []byte("dynamicData")
	BitassetPrefix   = []byte("bitassetData")
	AccountPrefix    = []byte("account")
	BalancePrefix    = []byte("balance")
	SettlementPrefix = []byte("settlement")
	CallOrderPrefix  = []byte("callOrder")
	SingletonPrefix  = []byte("singleton")

	TimestampKey   = []byte("timestamp")
	ObjectCountKey = []byte("object count")
)

// Chain collects all methods the operation executors use to read and mutate
// ledger state.
type Chain interface {
	GetTimestamp() time.Time
	SetTimestamp(tm time.Time)

	// NewObjectID returns the next identifier of the deterministic
	// object-ID sequence.
	NewObjectID() ids.ID

	// GetAsset returns the asset with [assetID], or database.ErrNotFound.
	GetAsset(assetID ids.ID) (*Asset, error)
	// GetAssetBySymbol resolves [symbol] through the symbol index.
	GetAssetBySymbol(symbol string) (*Asset, error)
	// AddAsset registers a new asset and its symbol.
	//
	// Invariant: no asset with the same ID or symbol exists.
	AddAsset(a *Asset)
	// PutAsset overwrites an existing asset. The symbol never changes.
	PutAsset(a *Asset)

	GetDynamicData(id ids.ID) (*AssetDynamicData, error)
	PutDynamicData(d *AssetDynamicData)

	GetBitassetData(id ids.ID) (*BitassetData, error)
	PutBitassetData(b *BitassetData)

	GetAccount(addr ids.ShortID) (*Account, error)
	PutAccount(a *Account)

	// GetBalance returns the holder's balance in the given asset; missing
	// entries read as zero.
	GetBalance(addr ids.ShortID, assetID ids.ID) (uint64, error)
	AddBalance(addr ids.ShortID, amount asset.Amount) error
	SubBalance(addr ids.ShortID, amount asset.Amount) error

	AddSettlement(s *ForceSettlement)
	DeleteSettlement(s *ForceSettlement)
	// FirstSettlement returns the earliest-maturing pending settlement of
	// [assetID], if any.
	FirstSettlement(assetID ids.ID) (*ForceSettlement, bool)

	PutCallOrder(c *CallOrder)
	DeleteCallOrder(c *CallOrder)
	// LeastCollateralized returns the open position of [assetID] with the
	// lowest collateral-to-debt ratio, if any.
	LeastCollateralized(assetID ids.ID) (*CallOrder, bool)
}

// State is a Chain whose mutations can be flushed to the backing database.
type State interface {
	Chain

	// Commit flushes all pending mutations atomically.
	Commit() error

	// Abort drops all pending mutations.
	Abort()

	Close() error
}

type balanceKey struct {
	addr    ids.ShortID
	assetID ids.ID
}

type state struct {
	log log.Logger

	baseDB *versiondb.Database

	modifiedAssets map[ids.ID]*Asset
	assetCache     cache.Cacher[ids.ID, *Asset]
	assetDB        database.Database

	addedSymbols map[string]ids.ID
	symbolCache  cache.Cacher[string, ids.ID]
	symbolDB     database.Database

	modifiedDynamic map[ids.ID]*AssetDynamicData
	dynamicCache    cache.Cacher[ids.ID, *AssetDynamicData]
	dynamicDB       database.Database

	modifiedBitassets map[ids.ID]*BitassetData
	bitassetCache     cache.Cacher[ids.ID, *BitassetData]
	bitassetDB        database.Database

	modifiedAccounts map[ids.ShortID]*Account
	accountCache     cache.Cacher[ids.ShortID, *Account]
	accountDB        database.Database

	modifiedBalances map[balanceKey]uint64
	balanceCache     cache.Cacher[balanceKey, uint64]
	balanceDB        database.Database

	// Full in-memory ordered indexes, rebuilt from disk on open.
	settlements        *btree.BTreeG[*ForceSettlement]
	addedSettlements   map[ids.ID]*ForceSettlement
	removedSettlements map[ids.ID]*ForceSettlement
	settlementDB       database.Database

	callOrders        *btree.BTreeG[*CallOrder]
	modifiedCallOrders map[ids.ID]*CallOrder
	removedCallOrders  map[ids.ID]*CallOrder
	callOrderDB       database.Database

	timestamp    time.Time
	nextObjectID uint64
	singletonDB  database.Database
}

// New opens the asset ledger state over [db], rebuilding the ordered
// settlement and call-order indexes.
func New(
	db database.Database,
	registerer metric.Registry,
	logger log.Logger,
) (State, error) {
	assetCache, err := metercacher.New[ids.ID, *Asset](
		"asset_cache",
		registerer,
		lru.NewCache[ids.ID, *Asset](assetCacheSize),
	)
	if err != nil {
		return nil, err
	}
	symbolCache, err := metercacher.New[string, ids.ID](
		"symbol_cache",
		registerer,
		lru.NewCache[string, ids.ID](symbolCacheSize),
	)
	if err != nil {
		return nil, err
	}
	dynamicCache, err := metercacher.New[ids.ID, *AssetDynamicData](
		"dynamic_data_cache",
		registerer,
		lru.NewCache[ids.ID, *AssetDynamicData](dynamicCacheSize),
	)
	if err != nil {
		return nil, err
	}
	bitassetCache, err := metercacher.New[ids.ID, *BitassetData](
		"bitasset_data_cache",
		registerer,
		lru.NewCache[ids.ID, *BitassetData](bitassetCacheSize),
	)
	if err != nil {
		return nil, err
	}
	accountCache, err := metercacher.New[ids.ShortID, *Account](
		"account_cache",
		registerer,
		lru.NewCache[ids.ShortID, *Account](accountCacheSize),
	)
	if err != nil {
		return nil, err
	}
	balanceCache, err := metercacher.New[balanceKey, uint64](
		"balance_cache",
		registerer,
		lru.NewCache[balanceKey, uint64](balanceCacheSize),
	)
	if err != nil {
		return nil, err
	}

	baseDB := versiondb.New(db)
	s := &state{
		log:    logger,
		baseDB: baseDB,

		modifiedAssets: make(map[ids.ID]*Asset),
		assetCache:     assetCache,
		assetDB:        prefixdb.New(AssetPrefix, baseDB),

		addedSymbols: make(map[string]ids.ID),
		symbolCache:  symbolCache,
		symbolDB:     prefixdb.New(SymbolPrefix, baseDB),

		modifiedDynamic: make(map[ids.ID]*AssetDynamicData),
		dynamicCache:    dynamicCache,
		dynamicDB:       prefixdb.New(DynamicPrefix, baseDB),

		modifiedBitassets: make(map[ids.ID]*BitassetData),
		bitassetCache:     bitassetCache,
		bitassetDB:        prefixdb.New(BitassetPrefix, baseDB),

		modifiedAccounts: make(map[ids.ShortID]*Account),
		accountCache:     accountCache,
		accountDB:        prefixdb.New(AccountPrefix, baseDB),

		modifiedBalances: make(map[balanceKey]uint64),
		balanceCache:     balanceCache,
		balanceDB:        prefixdb.New(BalancePrefix, baseDB),

		settlements:        btree.NewG(defaultTreeDegree, (*ForceSettlement).Less),
		addedSettlements:   make(map[ids.ID]*ForceSettlement),
		removedSettlements: make(map[ids.ID]*ForceSettlement),
		settlementDB:       prefixdb.New(SettlementPrefix, baseDB),

		callOrders:         btree.NewG(defaultTreeDegree, (*CallOrder).Less),
		modifiedCallOrders: make(map[ids.ID]*CallOrder),
		removedCallOrders:  make(map[ids.ID]*CallOrder),
		callOrderDB:        prefixdb.New(CallOrderPrefix, baseDB),

		singletonDB: prefixdb.New(SingletonPrefix, baseDB),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *state) load() error {
	switch timestamp, err := database.GetUInt64(s.singletonDB, TimestampKey); err {
	case nil:
		s.timestamp = time.Unix(int64(timestamp), 0)
	case database.ErrNotFound:
	default:
		return err
	}

	switch count, err := database.GetUInt64(s.singletonDB, ObjectCountKey); err {
	case nil:
		s.nextObjectID = count
	case database.ErrNotFound:
	default:
		return err
	}

	settlementIt := s.settlementDB.NewIterator()
	defer settlementIt.Release()
	for settlementIt.Next() {
		settlement := &ForceSettlement{}
		if _, err := Codec.Unmarshal(settlementIt.Value(), settlement); err != nil {
			return fmt.Errorf("failed to parse settlement: %w", err)
		}
		s.settlements.ReplaceOrInsert(settlement)
	}
	if err := settlementIt.Error(); err != nil {
		return err
	}

	callOrderIt := s.callOrderDB.NewIterator()
	defer callOrderIt.Release()
	for callOrderIt.Next() {
		order := &CallOrder{}
		if _, err := Codec.Unmarshal(callOrderIt.Value(), order); err != nil {
			return fmt.Errorf("failed to parse call order: %w", err)
		}
		s.callOrders.ReplaceOrInsert(order)
	}
	return callOrderIt.Error()
}

func (s *state) GetTimestamp() time.Time {
	return s.timestamp
}

func (s *state) SetTimestamp(tm time.Time) {
	s.timestamp = tm
}

func (s *state) NewObjectID() ids.ID {
	s.nextObjectID++
	var id ids.ID
	binary.BigEndian.PutUint64(id[24:], s.nextObjectID)
	return id
}

func (s *state) GetAsset(assetID ids.ID) (*Asset, error) {
	if a, ok := s.modifiedAssets[assetID]; ok {
		return a, nil
	}
	if a, ok := s.assetCache.Get(assetID); ok {
		return a, nil
	}

	bytes, err := s.assetDB.Get(assetID[:])
	if err != nil {
		return nil, err
	}
	a := &Asset{}
	if _, err := Codec.Unmarshal(bytes, a); err != nil {
		return nil, fmt.Errorf("failed to parse asset: %w", err)
	}
	s.assetCache.Put(assetID, a)
	return a, nil
}

func (s *state) GetAssetBySymbol(symbol string) (*Asset, error) {
	if assetID, ok := s.addedSymbols[symbol]; ok {
		return s.GetAsset(assetID)
	}
	if assetID, ok := s.symbolCache.Get(symbol); ok {
		return s.GetAsset(assetID)
	}

	assetID, err := database.GetID(s.symbolDB, []byte(symbol))
	if err != nil {
		return nil, err
	}
	s.symbolCache.Put(symbol, assetID)
	return s.GetAsset(assetID)
}

func (s *state) AddAsset(a *Asset) {
	s.modifiedAssets[a.ID] = a
	s.addedSymbols[a.Symbol] = a.ID
}

func (s *state) PutAsset(a *Asset) {
	s.modifiedAssets[a.ID] = a
}

func (s *state) GetDynamicData(id ids.ID) (*AssetDynamicData, error) {
	if d, ok := s.modifiedDynamic[id]; ok {
		return d, nil
	}
	if d, ok := s.dynamicCache.Get(id); ok {
		return d, nil
	}

	bytes, err := s.dynamicDB.Get(id[:])
	if err != nil {
		return nil, err
	}
	d := &AssetDynamicData{}
	if _, err := Codec.Unmarshal(bytes, d); err != nil {
		return nil, fmt.Errorf("failed to parse dynamic data: %w", err)
	}
	s.dynamicCache.Put(id, d)
	return d, nil
}

func (s *state) PutDynamicData(d *AssetDynamicData) {
	s.modifiedDynamic[d.ID] = d
}

func (s *state) GetBitassetData(id ids.ID) (*BitassetData, error) {
	if b, ok := s.modifiedBitassets[id]; ok {
		return b, nil
	}
	if b, ok := s.bitassetCache.Get(id); ok {
		return b, nil
	}

	bytes, err := s.bitassetDB.Get(id[:])
	if err != nil {
		return nil, err
	}
	b := &BitassetData{}
	if _, err := Codec.Unmarshal(bytes, b); err != nil {
		return nil, fmt.Errorf("failed to parse bitasset data: %w", err)
	}
	s.bitassetCache.Put(id, b)
	return b, nil
}

func (s *state) PutBitassetData(b *BitassetData) {
	s.modifiedBitassets[b.ID] = b
}

func (s *state) GetAccount(addr ids.ShortID) (*Account, error) {
	if a, ok := s.modifiedAccounts[addr]; ok {
		return a, nil
	}
	if a, ok := s.accountCache.Get(addr); ok {
		return a, nil
	}

	bytes, err := s.accountDB.Get(addr[:])
	if err != nil {
		return nil, err
	}
	a := &Account{}
	if _, err := Codec.Unmarshal(bytes, a); err != nil {
		return nil, fmt.Errorf("failed to parse account: %w", err)
	}
	s.accountCache.Put(addr, a)
	return a, nil
}

func (s *state) PutAccount(a *Account) {
	s.modifiedAccounts[a.Address] = a
}

func (s *state) GetBalance(addr ids.ShortID, assetID ids.ID) (uint64, error) {
	key := balanceKey{addr: addr, assetID: assetID}
	if balance, ok := s.modifiedBalances[key]; ok {
		return balance, nil
	}
	if balance, ok := s.balanceCache.Get(key); ok {
		return balance, nil
	}

	balance, err := database.GetUInt64(s.balanceDB, balanceDBKey(key))
	switch err {
	case nil:
	case database.ErrNotFound:
		balance = 0
	default:
		return 0, err
	}
	s.balanceCache.Put(key, balance)
	return balance, nil
}

func (s *state) AddBalance(addr ids.ShortID, amount asset.Amount) error {
	balance, err := s.GetBalance(addr, amount.AssetID)
	if err != nil {
		return err
	}
	newBalance, err := safemath.Add(balance, amount.Amount)
	if err != nil {
		return fmt.Errorf("balance overflow for %s: %w", addr, err)
	}
	s.modifiedBalances[balanceKey{addr: addr, assetID: amount.AssetID}] = newBalance
	return nil
}

func (s *state) SubBalance(addr ids.ShortID, amount asset.Amount) error {
	balance, err := s.GetBalance(addr, amount.AssetID)
	if err != nil {
		return err
	}
	newBalance, err := safemath.Sub(balance, amount.Amount)
	if err != nil {
		return fmt.Errorf("balance underflow for %s: %w", addr, err)
	}
	s.modifiedBalances[balanceKey{addr: addr, assetID: amount.AssetID}] = newBalance
	return nil
}

func (s *state) AddSettlement(settlement *ForceSettlement) {
	s.settlements.ReplaceOrInsert(settlement)
	s.addedSettlements[settlement.ID] = settlement
	delete(s.removedSettlements, settlement.ID)
}

func (s *state) DeleteSettlement(settlement *ForceSettlement) {
	s.settlements.Delete(settlement)
	s.removedSettlements[settlement.ID] = settlement
	delete(s.addedSettlements, settlement.ID)
}

func (s *state) FirstSettlement(assetID ids.ID) (*ForceSettlement, bool) {
	var (
		first *ForceSettlement
		pivot = &ForceSettlement{
			Balance: asset.Amount{AssetID: assetID},
		}
	)
	s.settlements.AscendGreaterOrEqual(pivot, func(settlement *ForceSettlement) bool {
		if settlement.Balance.AssetID == assetID {
			first = settlement
		}
		return false
	})
	return first, first != nil
}

func (s *state) PutCallOrder(order *CallOrder) {
	// The ratio keys the tree, so an update must remove the stale entry
	// before inserting the new one.
	if old, ok := s.modifiedCallOrders[order.ID]; ok {
		s.callOrders.Delete(old)
	}
	s.callOrders.ReplaceOrInsert(order)
	s.modifiedCallOrders[order.ID] = order
	delete(s.removedCallOrders, order.ID)
}

func (s *state) DeleteCallOrder(order *CallOrder) {
	s.callOrders.Delete(order)
	s.removedCallOrders[order.ID] = order
	delete(s.modifiedCallOrders, order.ID)
}

func (s *state) LeastCollateralized(assetID ids.ID) (*CallOrder, bool) {
	var (
		least *CallOrder
		pivot = &CallOrder{
			Debt: asset.Amount{AssetID: assetID},
		}
	)
	s.callOrders.AscendGreaterOrEqual(pivot, func(order *CallOrder) bool {
		if order.Debt.AssetID == assetID {
			least = order
		}
		return false
	})
	return least, least != nil
}

func (s *state) Commit() error {
	defer s.Abort()
	batch, err := s.CommitBatch()
	if err != nil {
		return err
	}
	return batch.Write()
}

func (s *state) Abort() {
	s.baseDB.Abort()
}

func (s *state) CommitBatch() (database.Batch, error) {
	if err := s.write(); err != nil {
		return nil, err
	}
	return s.baseDB.CommitBatch()
}

func (s *state) Close() error {
	return s.baseDB.Close()
}

func (s *state) write() error {
	for assetID, a := range s.modifiedAssets {
		delete(s.modifiedAssets, assetID)

		bytes, err := Codec.Marshal(CodecVersion, a)
		if err != nil {
			return fmt.Errorf("failed to marshal asset: %w", err)
		}
		s.assetCache.Put(assetID, a)
		if err := s.assetDB.Put(assetID[:], bytes); err != nil {
			return fmt.Errorf("failed to write asset: %w", err)
		}
	}

	for symbol, assetID := range s.addedSymbols {
		delete(s.addedSymbols, symbol)

		s.symbolCache.Put(symbol, assetID)
		if err := database.PutID(s.symbolDB, []byte(symbol), assetID); err != nil {
			return fmt.Errorf("failed to write symbol index: %w", err)
		}
	}

	for id, d := range s.modifiedDynamic {
		delete(s.modifiedDynamic, id)

		bytes, err := Codec.Marshal(CodecVersion, d)
		if err != nil {
			return fmt.Errorf("failed to marshal dynamic data: %w", err)
		}
		s.dynamicCache.Put(id, d)
		if err := s.dynamicDB.Put(id[:], bytes); err != nil {
			return fmt.Errorf("failed to write dynamic data: %w", err)
		}
	}

	for id, b := range s.modifiedBitassets {
		delete(s.modifiedBitassets, id)

		bytes, err := Codec.Marshal(CodecVersion, b)
		if err != nil {
			return fmt.Errorf("failed to marshal bitasset data: %w", err)
		}
		s.bitassetCache.Put(id, b)
		if err := s.bitassetDB.Put(id[:], bytes); err != nil {
			return fmt.Errorf("failed to write bitasset data: %w", err)
		}
	}

	for addr, a := range s.modifiedAccounts {
		delete(s.modifiedAccounts, addr)

		bytes, err := Codec.Marshal(CodecVersion, a)
		if err != nil {
			return fmt.Errorf("failed to marshal account: %w", err)
		}
		s.accountCache.Put(addr, a)
		if err := s.accountDB.Put(addr[:], bytes); err != nil {
			return fmt.Errorf("failed to write account: %w", err)
		}
	}

	for key, balance := range s.modifiedBalances {
		delete(s.modifiedBalances, key)

		s.balanceCache.Put(key, balance)
		if err := database.PutUInt64(s.balanceDB, balanceDBKey(key), balance); err != nil {
			return fmt.Errorf("failed to write balance: %w", err)
		}
	}

	for id, settlement := range s.addedSettlements {
		delete(s.addedSettlements, id)

		bytes, err := Codec.Marshal(CodecVersion, settlement)
		if err != nil {
			return fmt.Errorf("failed to marshal settlement: %w", err)
		}
		if err := s.settlementDB.Put(id[:], bytes); err != nil {
			return fmt.Errorf("failed to write settlement: %w", err)
		}
	}
	for id := range s.removedSettlements {
		delete(s.removedSettlements, id)

		if err := s.settlementDB.Delete(id[:]); err != nil {
			return fmt.Errorf("failed to delete settlement: %w", err)
		}
	}

	for id, order := range s.modifiedCallOrders {
		delete(s.modifiedCallOrders, id)

		bytes, err := Codec.Marshal(CodecVersion, order)
		if err != nil {
			return fmt.Errorf("failed to marshal call order: %w", err)
		}
		if err := s.callOrderDB.Put(id[:], bytes); err != nil {
			return fmt.Errorf("failed to write call order: %w", err)
		}
	}
	for id := range s.removedCallOrders {
		delete(s.removedCallOrders, id)

		if err := s.callOrderDB.Delete(id[:]); err != nil {
			return fmt.Errorf("failed to delete call order: %w", err)
		}
	}

	if err := database.PutUInt64(s.singletonDB, TimestampKey, uint64(max(s.timestamp.Unix(), 0))); err != nil {
		return fmt.Errorf("failed to write timestamp: %w", err)
	}
	return database.PutUInt64(s.singletonDB, ObjectCountKey, s.nextObjectID)
}

func balanceDBKey(key balanceKey) []byte {
	dbKey := make([]byte, len(key.addr)+len(key.assetID))
	copy(dbKey, key.addr[:])
	copy(dbKey[len(key.addr):], key.assetID[:])
	return dbKey
}
