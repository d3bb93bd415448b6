package client

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/daSkciN/estoque-app-front/internal/domain"
	"github.com/shopspring/decimal"
)

type productDTO struct {
	IDProduto         int64           `json:"idProduto"`
	Nome              string          `json:"nome"`
	PrecoVenda        decimal.Decimal `json:"precoVenda"`
	QuantidadeEstoque int             `json:"quantidadeEstoque"`
}

type categoryDTO struct {
	IDCategoria int64  `json:"idCategoria"`
	Nome        string `json:"nome"`
}

type saleItemDTO struct {
	IDProduto     int64       `json:"idProduto"`
	Quantidade    int         `json:"quantidade"`
	PrecoUnitario json.Number `json:"precoUnitario"`
}

type saleDTO struct {
	Itens []saleItemDTO `json:"itens"`
}

type newProductDTO struct {
	Nome          string      `json:"nome"`
	NomeCategoria string      `json:"nomeCategoria"`
	PrecoCusto    json.Number `json:"precoCusto"`
	PrecoVenda    json.Number `json:"precoVenda"`
}

type stockEntryDTO struct {
	IDProduto  int64 `json:"idProduto"`
	Quantidade int   `json:"quantidade"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// Products fetches GET /produto.
func (c *APIClient) Products(ctx context.Context) ([]domain.Product, error) {
	const op = "list products"
	data, err := c.do(ctx, op, http.MethodGet, "/produto", nil)
	if err != nil {
		return nil, err
	}
	dtos, err := decode[[]productDTO](op, data)
	if err != nil {
		return nil, err
	}
	products := make([]domain.Product, len(dtos))
	for i, p := range dtos {
		products[i] = domain.Product{
			ID:            p.IDProduto,
			Name:          p.Nome,
			SalePrice:     p.PrecoVenda,
			StockQuantity: p.QuantidadeEstoque,
		}
	}
	return products, nil
}

// Categories fetches GET /categoria.
func (c *APIClient) Categories(ctx context.Context) ([]domain.Category, error) {
	const op = "list categories"
	data, err := c.do(ctx, op, http.MethodGet, "/categoria", nil)
	if err != nil {
		return nil, err
	}
	dtos, err := decode[[]categoryDTO](op, data)
	if err != nil {
		return nil, err
	}
	categories := make([]domain.Category, len(dtos))
	for i, cat := range dtos {
		categories[i] = domain.Category{ID: cat.IDCategoria, Name: cat.Nome}
	}
	return categories, nil
}

// SubmitSale posts the whole cart as one order to POST /venda.
func (c *APIClient) SubmitSale(ctx context.Context, sale domain.Sale) error {
	payload := saleDTO{Itens: make([]saleItemDTO, len(sale.Items))}
	for i, item := range sale.Items {
		payload.Itens[i] = saleItemDTO{
			IDProduto:     item.ProductID,
			Quantidade:    item.Quantity,
			PrecoUnitario: number(item.UnitPrice),
		}
	}
	_, err := c.do(ctx, "submit sale", http.MethodPost, "/venda", payload)
	return err
}

func (c *APIClient) CreateProduct(ctx context.Context, p domain.NewProduct) error {
	_, err := c.do(ctx, "create product", http.MethodPost, "/produto", newProductDTO{
		Nome:          p.Name,
		NomeCategoria: p.CategoryName,
		PrecoCusto:    number(p.CostPrice),
		PrecoVenda:    number(p.SalePrice),
	})
	return err
}

func (c *APIClient) RegisterStockEntry(ctx context.Context, e domain.StockEntry) error {
	_, err := c.do(ctx, "register stock entry", http.MethodPost, "/entradaEstoque", stockEntryDTO{
		IDProduto:  e.ProductID,
		Quantidade: e.Quantity,
	})
	return err
}
