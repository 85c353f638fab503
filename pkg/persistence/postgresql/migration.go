package postgresql

// The supplier_links, supplier_products, and storefront_products tables are
// provisioned here for local development and tests; in production they are
// owned and populated by the product-matching and supplier-sync subsystems.
// Only availability_snapshots and run_summaries belong to this engine.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS supplier_products (
				id UUID PRIMARY KEY,
				supplier_name VARCHAR(255) NOT NULL,
				supplier_sku VARCHAR(255) NOT NULL,
				product_name TEXT,
				stock_level INT NOT NULL DEFAULT 0,
				availability VARCHAR(50),
				last_synced_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_supplier_products_supplier_name
				ON supplier_products(supplier_name);
			CREATE INDEX IF NOT EXISTS idx_supplier_products_last_synced_at
				ON supplier_products(last_synced_at);

			CREATE TABLE IF NOT EXISTS storefront_products (
				id UUID PRIMARY KEY,
				product_id BIGINT NOT NULL,
				sku VARCHAR(255) NOT NULL,
				name TEXT,
				availability VARCHAR(50) NOT NULL DEFAULT 'available',
				inventory_level INT NOT NULL DEFAULT 0,
				is_visible BOOLEAN NOT NULL DEFAULT true,
				price NUMERIC(12,2) NOT NULL DEFAULT 0,
				sale_price NUMERIC(12,2) NOT NULL DEFAULT 0,
				is_clearance BOOLEAN NOT NULL DEFAULT false,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_storefront_products_sku
				ON storefront_products(sku);

			CREATE TABLE IF NOT EXISTS supplier_links (
				id UUID PRIMARY KEY,
				storefront_product_id UUID NOT NULL REFERENCES storefront_products(id),
				supplier_product_id UUID NOT NULL REFERENCES supplier_products(id),
				supplier_name VARCHAR(255) NOT NULL,
				active BOOLEAN NOT NULL DEFAULT true
			);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_supplier_links_active_pair
				ON supplier_links(storefront_product_id, supplier_name)
				WHERE active;
			CREATE INDEX IF NOT EXISTS idx_supplier_links_active
				ON supplier_links(active);
		`,
		2: `
			CREATE TABLE availability_snapshots (
				run_id UUID NOT NULL,
				link_id UUID NOT NULL,
				product_id BIGINT NOT NULL,
				sku VARCHAR(255) NOT NULL,
				previous_availability VARCHAR(50) NOT NULL,
				previous_inventory INT NOT NULL,
				intended_action VARCHAR(50) NOT NULL,
				intended_availability VARCHAR(50) NOT NULL,
				intended_inventory INT NOT NULL,
				supplier_name VARCHAR(255),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_availability_snapshots_run_id
				ON availability_snapshots(run_id);

			CREATE TABLE run_summaries (
				id UUID PRIMARY KEY,
				workflow_name VARCHAR(255) NOT NULL,
				status VARCHAR(50) NOT NULL CHECK (status IN ('success', 'partial_failure', 'aborted')),
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE NOT NULL,
				duration_seconds DOUBLE PRECISION NOT NULL,
				metadata JSONB
			);

			CREATE INDEX idx_run_summaries_started_at
				ON run_summaries(started_at);
			CREATE INDEX idx_run_summaries_status
				ON run_summaries(status);
		`,
	}
}
