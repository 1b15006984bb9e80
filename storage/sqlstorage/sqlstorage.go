// Package sqlstorage persists tender records to MySQL in batches.
package sqlstorage

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/tenderwatch/crawler/storage/sqldb"
	"github.com/tenderwatch/crawler/tender"
)

// columns mirrors tender.Columns, with SQL-safe names in the same order.
// RecordID and CreatedAt are appended by the storage layer itself.
var columns = []sqldb.Field{
	{Title: "Title", Type: "MEDIUMTEXT"},
	{Title: "URL", Type: "VARCHAR(255)"},
	{Title: "New", Type: "VARCHAR(8)"},
	{Title: "TenderType", Type: "MEDIUMTEXT"},
	{Title: "BidNumber", Type: "MEDIUMTEXT"},
	{Title: "Department", Type: "MEDIUMTEXT"},
	{Title: "BidDescription", Type: "MEDIUMTEXT"},
	{Title: "Location", Type: "MEDIUMTEXT"},
	{Title: "OpeningDate", Type: "MEDIUMTEXT"},
	{Title: "ClosingDate", Type: "MEDIUMTEXT"},
	{Title: "ModifiedDate", Type: "MEDIUMTEXT"},
	{Title: "DatePublished", Type: "MEDIUMTEXT"},
	{Title: "ContactPerson", Type: "MEDIUMTEXT"},
	{Title: "Email", Type: "MEDIUMTEXT"},
	{Title: "Tel", Type: "MEDIUMTEXT"},
	{Title: "BriefingSession", Type: "MEDIUMTEXT"},
	{Title: "CompulsoryBriefing", Type: "MEDIUMTEXT"},
	{Title: "BriefingDate", Type: "MEDIUMTEXT"},
	{Title: "Venue", Type: "MEDIUMTEXT"},
	{Title: "SpecialConditions", Type: "MEDIUMTEXT"},
	{Title: "Description", Type: "MEDIUMTEXT"},
	{Title: "RecordID", Type: "VARCHAR(32)"},
	{Title: "CreatedAt", Type: "VARCHAR(255)"},
}

type TenderStorage struct {
	dataDocker []tender.Record
	db         sqldb.DBer
	node       *snowflake.Node
	created    bool
	options
}

func New(opts ...Option) (*TenderStorage, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	s := &TenderStorage{}
	s.options = options

	var err error
	if s.node, err = snowflake.NewNode(1); err != nil {
		return nil, err
	}

	s.db, err = sqldb.New(
		sqldb.WithConnURL(s.sqlURL),
		sqldb.WithLogger(s.logger),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Save buffers records and flushes a full batch to the database. The
// table is created on first use.
func (s *TenderStorage) Save(records ...tender.Record) error {
	if !s.created {
		err := s.db.CreateTable(sqldb.TableData{
			TableName:   s.table,
			ColumnNames: columns,
			AutoKey:     true,
		})
		if err != nil {
			s.logger.Error("create table failed", zap.Error(err))
		}

		s.created = true
	}

	for _, r := range records {
		if len(s.dataDocker) >= s.BatchCount {
			if err := s.Flush(); err != nil {
				s.logger.Error("insert data failed", zap.Error(err))
			}
		}

		s.dataDocker = append(s.dataDocker, r)
	}

	return nil
}

// Flush writes all buffered records in one multi-row insert and clears
// the buffer. Flushing an empty buffer is a no-op.
func (s *TenderStorage) Flush() error {
	if len(s.dataDocker) == 0 {
		return nil
	}

	defer func() {
		s.dataDocker = nil
	}()

	args := make([]interface{}, 0, len(s.dataDocker)*len(columns))

	for _, r := range s.dataDocker {
		for _, v := range r.Values() {
			args = append(args, v)
		}

		args = append(args,
			s.node.Generate().String(),
			time.Now().Format("2006-01-02 15:04:05"),
		)
	}

	return s.db.Insert(sqldb.TableData{
		TableName:   s.table,
		ColumnNames: columns,
		Args:        args,
		DataCount:   len(s.dataDocker),
	})
}
