package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mesadesk/ticketdesk/internal/server/config"
	"github.com/mesadesk/ticketdesk/internal/server/models"
	"github.com/mesadesk/ticketdesk/internal/server/repositories/tickets"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const (
	reportSheet       = "Tickets"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	reportDateLayout  = "02/01/2006"
	presignURLExpires = 15 * time.Minute
)

var reportHeaders = []string{
	"ID",
	"Nombre del solicitante",
	"Tipo de ticket",
	"Estatus del ticket",
	"Fecha de la solicitud",
	"Fecha de resolución",
}

// ReportService builds the ticket report workbook and archives copies in
// object storage.
type ReportService struct {
	tickets tickets.Repository
	config  *config.Config
}

func NewReportService(ticketsRepo tickets.Repository, cfg *config.Config) *ReportService {
	return &ReportService{tickets: ticketsRepo, config: cfg}
}

// reportStorageKey returns a collision-free object key for an archived report.
func reportStorageKey(filename string) string {
	d := time.Now()
	return fmt.Sprintf("reports/%d/%d/%d/%v_%s", d.Year(), d.Month(), d.Day(), uuid.New(), filename)
}

// Generate renders every ticket into an xlsx workbook and returns the
// suggested filename together with the file contents.
func (s *ReportService) Generate(ctx context.Context) (string, []byte, error) {
	all, err := s.tickets.List(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("error listing tickets: %w", err)
	}

	data, err := buildWorkbook(all)
	if err != nil {
		return "", nil, fmt.Errorf("error building workbook: %w", err)
	}

	filename := fmt.Sprintf("ReporteDeTickets_%s.xlsx", time.Now().Format("02012006"))
	return filename, data, nil
}

func buildWorkbook(all []*models.Ticket) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"0071AB"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	zebraStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"F4F4F4"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for col, header := range reportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(reportSheet, cell, header); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(reportSheet, "A1", "F1", headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(reportSheet, "A", "F", 22); err != nil {
		return nil, err
	}

	for i, t := range all {
		row := i + 2

		category := t.CategoryName
		if category == "" {
			category = "Sin categoría"
		}

		registration := "N/A"
		if !t.RegistrationDate.IsZero() {
			registration = t.RegistrationDate.Format(reportDateLayout)
		}

		resolution := ""
		if t.ResolutionDate != nil {
			resolution = t.ResolutionDate.Format(reportDateLayout)
		}

		values := []any{t.ID, t.Name, category, t.StatusName, registration, resolution}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(reportSheet, cell, v); err != nil {
				return nil, err
			}
		}

		if row%2 == 0 {
			first, _ := excelize.CoordinatesToCellName(1, row)
			last, _ := excelize.CoordinatesToCellName(len(reportHeaders), row)
			if err := f.SetCellStyle(reportSheet, first, last, zebraStyle); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ReportService) getS3Client() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	}), nil
}

// Archive uploads a generated report to the configured bucket and returns a
// presigned GET URL for it.
func (s *ReportService) Archive(ctx context.Context, filename string, data []byte) (string, error) {
	client, err := s.getS3Client()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := reportStorageKey(filename)
	contentType := xlsxContentType

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("error uploading report: %w", err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignURLExpires))
	if err != nil {
		return "", fmt.Errorf("error presigning report url: %w", err)
	}

	return req.URL, nil
}
