package database

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations holds the schema statements executed at startup. Each
// statement is idempotent (CREATE TABLE IF NOT EXISTS) so repeated
// boots are safe without a separate migration ledger.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		id                      BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_reference       VARCHAR(32)  NOT NULL,
		status                  VARCHAR(32)  NOT NULL,
		customer_name           VARCHAR(100) NOT NULL,
		customer_email          VARCHAR(254) NOT NULL,
		customer_phone          VARCHAR(20)  NOT NULL,
		customer_age            INT          NOT NULL,
		license_category        VARCHAR(20)  NOT NULL,
		vespa_model             VARCHAR(100) NOT NULL,
		start_date              DATE         NOT NULL,
		rental_type             VARCHAR(20)  NOT NULL,
		route                   VARCHAR(200) NOT NULL DEFAULT '',
		helmet                  TINYINT(1)   NOT NULL DEFAULT 0,
		message                 VARCHAR(500) NOT NULL DEFAULT '',
		price_base_cents        INT UNSIGNED NOT NULL,
		price_helmet_cents      INT UNSIGNED NOT NULL DEFAULT 0,
		price_subtotal_cents    INT UNSIGNED NOT NULL,
		price_deposit_cents     INT UNSIGNED NOT NULL,
		price_total_cents       INT UNSIGNED NOT NULL,
		wf_confirmation_email_sent TINYINT(1) NOT NULL DEFAULT 0,
		wf_payment_processed    TINYINT(1)   NOT NULL DEFAULT 0,
		wf_thank_you_email_sent TINYINT(1)   NOT NULL DEFAULT 0,
		wf_completed_at         DATETIME     NULL,
		doc_rental_agreement    TINYINT(1)   NOT NULL DEFAULT 0,
		doc_terms               TINYINT(1)   NOT NULL DEFAULT 0,
		doc_privacy_policy      TINYINT(1)   NOT NULL DEFAULT 0,
		signature_ref           VARCHAR(200) NOT NULL DEFAULT '',
		meta_language           VARCHAR(10)  NOT NULL DEFAULT '',
		meta_user_agent         VARCHAR(300) NOT NULL DEFAULT '',
		meta_referrer           VARCHAR(200) NOT NULL DEFAULT '',
		meta_source             VARCHAR(100) NOT NULL DEFAULT '',
		created_at              DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at              DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_bookings_reference (booking_reference),
		KEY idx_bookings_start_date (start_date),
		KEY idx_bookings_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS outbox_events (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_id    BIGINT UNSIGNED NOT NULL,
		event         VARCHAR(64)     NOT NULL,
		payload       JSON            NOT NULL,
		status        VARCHAR(16)     NOT NULL DEFAULT 'pending',
		attempts      INT             NOT NULL DEFAULT 0,
		created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		dispatched_at DATETIME        NULL,
		KEY idx_outbox_status (status, id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS email_log (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_id  BIGINT UNSIGNED NOT NULL,
		email_type  VARCHAR(64)     NOT NULL,
		status      VARCHAR(16)     NOT NULL,
		error       VARCHAR(500)    NOT NULL DEFAULT '',
		created_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_email_log_booking (booking_id, id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS consent_log (
		id                BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_reference VARCHAR(32)  NOT NULL DEFAULT '',
		document          VARCHAR(64)  NOT NULL,
		accepted          TINYINT(1)   NOT NULL,
		client_email      VARCHAR(254) NOT NULL DEFAULT '',
		meta_user_agent   VARCHAR(300) NOT NULL DEFAULT '',
		created_at        DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS condition_reports (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT UNSIGNED NOT NULL,
		kind       VARCHAR(16)     NOT NULL,
		zone       VARCHAR(16)     NOT NULL,
		checked    TINYINT(1)      NOT NULL DEFAULT 0,
		note       VARCHAR(500)    NOT NULL DEFAULT '',
		photo_url  VARCHAR(200)    NOT NULL DEFAULT '',
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_reports_booking (booking_id, kind, id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema. It runs at startup before the server
// accepts traffic.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
