package relationship

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// PostgresStore 基于 PostgreSQL 的授权关系存储。
// personas 列使用 JSONB 存储身份数组，读-改-写通过
// SELECT ... FOR UPDATE 行锁串行化。
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore 创建 PostgreSQL 关系存储
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get 按 dApp 定义地址与网络查询关系
func (s *PostgresStore) Get(ctx context.Context, dappDefinitionAddress string, networkID uint8) (*Relationship, error) {
	query := `
		SELECT display_name, personas
		FROM dapp_relationships
		WHERE dapp_definition_address = $1 AND network_id = $2
	`
	var displayName string
	var personasJSON []byte
	err := s.db.QueryRowContext(ctx, query, dappDefinitionAddress, networkID).Scan(&displayName, &personasJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get dapp relationship")
	}

	rel := &Relationship{
		DappDefinitionAddress: dappDefinitionAddress,
		NetworkID:             networkID,
		DisplayName:           displayName,
	}
	if err := json.Unmarshal(personasJSON, &rel.Personas); err != nil {
		return nil, errors.Wrap(err, "failed to decode authorized personas")
	}
	return rel, nil
}

// Upsert 写入整条关系记录
func (s *PostgresStore) Upsert(ctx context.Context, rel *Relationship) error {
	personasJSON, err := json.Marshal(rel.Personas)
	if err != nil {
		return errors.Wrap(err, "failed to encode authorized personas")
	}
	query := `
		INSERT INTO dapp_relationships (dapp_definition_address, network_id, display_name, personas, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (dapp_definition_address, network_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			personas = EXCLUDED.personas,
			updated_at = NOW()
	`
	_, err = s.db.ExecContext(ctx, query, rel.DappDefinitionAddress, rel.NetworkID, rel.DisplayName, personasJSON)
	if err != nil {
		return errors.Wrap(err, "failed to upsert dapp relationship")
	}
	return nil
}

// UpdatePersona 在行锁内更新关系中的单个身份记录
func (s *PostgresStore) UpdatePersona(ctx context.Context, dappDefinitionAddress string, networkID uint8, persona AuthorizedPersona) error {
	return s.withRowLock(ctx, dappDefinitionAddress, networkID, func(rel *Relationship) bool {
		rel.UpsertPersona(persona)
		return true
	})
}

// BumpLastLogin 在行锁内刷新身份的最近登录时间
func (s *PostgresStore) BumpLastLogin(ctx context.Context, dappDefinitionAddress string, networkID uint8, identityAddress string, at time.Time) error {
	return s.withRowLock(ctx, dappDefinitionAddress, networkID, func(rel *Relationship) bool {
		persona := rel.Persona(identityAddress)
		if persona == nil {
			return false
		}
		persona.LastLogin = at.UTC()
		return true
	})
}

// DeletePersona 从关系中移除单个身份，移除最后一个身份时删除整条关系
func (s *PostgresStore) DeletePersona(ctx context.Context, dappDefinitionAddress string, networkID uint8, identityAddress string) error {
	return s.withRowLock(ctx, dappDefinitionAddress, networkID, func(rel *Relationship) bool {
		kept := rel.Personas[:0]
		for _, p := range rel.Personas {
			if p.IdentityAddress != identityAddress {
				kept = append(kept, p)
			}
		}
		if len(kept) == len(rel.Personas) {
			return false
		}
		rel.Personas = kept
		return true
	})
}

// Delete 删除整条关系
func (s *PostgresStore) Delete(ctx context.Context, dappDefinitionAddress string, networkID uint8) error {
	query := `DELETE FROM dapp_relationships WHERE dapp_definition_address = $1 AND network_id = $2`
	_, err := s.db.ExecContext(ctx, query, dappDefinitionAddress, networkID)
	if err != nil {
		return errors.Wrap(err, "failed to delete dapp relationship")
	}
	return nil
}

// ListByPersona 列出某身份参与的全部关系
func (s *PostgresStore) ListByPersona(ctx context.Context, networkID uint8, identityAddress string) ([]*Relationship, error) {
	query := `
		SELECT dapp_definition_address, display_name, personas
		FROM dapp_relationships
		WHERE network_id = $1
			AND personas @> $2::jsonb
		ORDER BY dapp_definition_address
	`
	match, err := json.Marshal([]map[string]string{{"identityAddress": identityAddress}})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode persona match")
	}
	return s.scanRelationships(ctx, networkID, query, networkID, match)
}

// List 列出某网络下的全部关系
func (s *PostgresStore) List(ctx context.Context, networkID uint8) ([]*Relationship, error) {
	query := `
		SELECT dapp_definition_address, display_name, personas
		FROM dapp_relationships
		WHERE network_id = $1
		ORDER BY dapp_definition_address
	`
	return s.scanRelationships(ctx, networkID, query, networkID)
}

func (s *PostgresStore) scanRelationships(ctx context.Context, networkID uint8, query string, args ...interface{}) ([]*Relationship, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list dapp relationships")
	}
	defer rows.Close()

	var rels []*Relationship
	for rows.Next() {
		rel := &Relationship{NetworkID: networkID}
		var personasJSON []byte
		if err := rows.Scan(&rel.DappDefinitionAddress, &rel.DisplayName, &personasJSON); err != nil {
			return nil, errors.Wrap(err, "failed to scan dapp relationship")
		}
		if err := json.Unmarshal(personasJSON, &rel.Personas); err != nil {
			return nil, errors.Wrap(err, "failed to decode authorized personas")
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

// withRowLock 在事务内对单条关系执行读-改-写。
// mutate 返回 false 表示无需写回。
func (s *PostgresStore) withRowLock(ctx context.Context, dappDefinitionAddress string, networkID uint8, mutate func(*Relationship) bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	query := `
		SELECT display_name, personas
		FROM dapp_relationships
		WHERE dapp_definition_address = $1 AND network_id = $2
		FOR UPDATE
	`
	rel := &Relationship{
		DappDefinitionAddress: dappDefinitionAddress,
		NetworkID:             networkID,
	}
	var personasJSON []byte
	err = tx.QueryRowContext(ctx, query, dappDefinitionAddress, networkID).Scan(&rel.DisplayName, &personasJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return errors.Wrap(err, "failed to lock dapp relationship")
	}
	if err := json.Unmarshal(personasJSON, &rel.Personas); err != nil {
		return errors.Wrap(err, "failed to decode authorized personas")
	}

	if !mutate(rel) {
		return tx.Commit()
	}

	if len(rel.Personas) == 0 {
		del := `DELETE FROM dapp_relationships WHERE dapp_definition_address = $1 AND network_id = $2`
		if _, err := tx.ExecContext(ctx, del, dappDefinitionAddress, networkID); err != nil {
			return errors.Wrap(err, "failed to delete emptied dapp relationship")
		}
		return errors.Wrap(tx.Commit(), "failed to commit dapp relationship delete")
	}

	personasJSON, err = json.Marshal(rel.Personas)
	if err != nil {
		return errors.Wrap(err, "failed to encode authorized personas")
	}
	update := `
		UPDATE dapp_relationships
		SET personas = $3, updated_at = NOW()
		WHERE dapp_definition_address = $1 AND network_id = $2
	`
	if _, err := tx.ExecContext(ctx, update, dappDefinitionAddress, networkID, personasJSON); err != nil {
		return errors.Wrap(err, "failed to update dapp relationship")
	}
	return errors.Wrap(tx.Commit(), "failed to commit dapp relationship update")
}
